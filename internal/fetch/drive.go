package fetch

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/atanko123/Scripts/pkg/errors"
)

var (
	drivePathID  = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)
	driveQueryID = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
	driveBareID  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// DriveFileID extracts the file id from /d/{id} links, ?id={id} links or a
// bare id.
func DriveFileID(link string) (string, error) {
	link = strings.TrimSpace(link)
	if m := drivePathID.FindStringSubmatch(link); m != nil {
		return m[1], nil
	}
	if m := driveQueryID.FindStringSubmatch(link); m != nil {
		return m[1], nil
	}
	if driveBareID.MatchString(link) {
		return link, nil
	}
	return "", fmt.Errorf("%w: %s", errors.ErrInvalidDriveURL, link)
}

func DriveViewURL(id string) string {
	return "https://drive.google.com/file/d/" + url.PathEscape(id) + "/view"
}

func DriveDownloadURL(id string) string {
	return "https://drive.google.com/uc?export=download&id=" + url.QueryEscape(id)
}
