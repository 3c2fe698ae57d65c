package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteSBOMCSV writes rows with a UTF-8 BOM so spreadsheets detect the encoding.
func WriteSBOMCSV(w io.Writer, rows []SBOMRow) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("csv: write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Name", "Version", "Type", "PURL"}); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.Name, row.Version, row.Type, row.PURL}); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
