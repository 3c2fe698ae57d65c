package viewmodels

import (
	"github.com/PlayerIUnknown/aegis-gui/internal/configapi"
	"github.com/PlayerIUnknown/aegis-gui/internal/scans"
)

// FormMessage is the inline result of a form submission.
type FormMessage struct {
	Type string
	Text string
}

type SetupViewData struct {
	Layout      LayoutData
	APIKey      string
	Snippet     string
	Steps       []string
	GateStats   []scans.Stat
	Gates       configapi.QualityGateConfig
	GateMessage *FormMessage
}

// HasAPIKey reports whether the tenant has a provisioned scanner key.
func (d SetupViewData) HasAPIKey() bool {
	return d.APIKey != ""
}

// OnboardingSteps are the numbered setup instructions.
var OnboardingSteps = []string{
	"Copy the tenant API key and store it as an encrypted secret in your repository.",
	"Paste the workflow snippet into your CI configuration, updating the path or image tags as needed.",
	"Run your pipeline to push scan results to the Config API.",
	"Return to the Dashboard tab to monitor quality gates, repositories, and findings in real time.",
}
