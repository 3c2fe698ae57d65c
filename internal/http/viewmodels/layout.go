package viewmodels

import "strings"

// ToastViewData is a one-shot notification carried across a redirect.
type ToastViewData struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// HeaderBadge is a small status chip shown in the page header.
type HeaderBadge struct {
	Key   string
	Icon  string
	Label string
}

type LayoutData struct {
	Title      string
	CSRFToken  string
	UserEmail  string
	TenantID   string
	OwnerName  string
	ActivePath string
	CurrentURL string
	Badges     []HeaderBadge
	Error      string
	Toast      *ToastViewData
}

// NavItem is one entry of the sidebar navigation.
type NavItem struct {
	Href        string
	Label       string
	Description string
	Icon        string
	Active      bool
}

// NavItems returns the sidebar entries with the one matching activePath marked.
func NavItems(activePath string) []NavItem {
	items := []NavItem{
		{Href: "/", Label: "Dashboard", Description: "Review scans and repositories.", Icon: "activity"},
		{Href: "/setup", Label: "Setup", Description: "Configure API keys and CI steps.", Icon: "key"},
	}
	for i := range items {
		if items[i].Href == "/" {
			items[i].Active = activePath == "/" || activePath == ""
			continue
		}
		items[i].Active = activePath == items[i].Href || strings.HasPrefix(activePath, items[i].Href+"/")
	}
	return items
}
