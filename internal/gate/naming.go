package gate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/atanko123/Scripts/internal/model"
)

const invalidFilenameChars = `<>:"/\|?*`

// Sanitize makes a single filename component: whitespace and control
// characters are dropped, reserved characters become '-'.
func Sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsSpace(r) || unicode.IsControl(r):
			continue
		case strings.ContainsRune(invalidFilenameChars, r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DownloadKey is {id}_{place}_{event}_PaidBy_{name}.
func DownloadKey(row model.DownloadRow) string {
	return fmt.Sprintf("%s_%s_%s_PaidBy_%s",
		Sanitize(row.ID), Sanitize(row.Place), Sanitize(row.Event), Sanitize(row.Name))
}

func BarcodeKey(row model.BarcodeRow) string {
	return Sanitize(row.Name)
}
