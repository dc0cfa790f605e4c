package youtube

import (
	"regexp"

	"video-analyzer/internal/apperrors"
)

// videoIDPattern recognises watch?v=, youtu.be/, embed/, v/ and /u/<c>/ URLs.
// The last group holds the candidate identifier.
var videoIDPattern = regexp.MustCompile(`^.*((youtu\.be/)|(v/)|(/u/\w/)|(embed/)|(watch\?))\??v?=?([^#&?]*).*`)

const videoIDLength = 11

// ExtractVideoID returns the 11-character video identifier embedded in url.
func ExtractVideoID(url string) (string, error) {
	match := videoIDPattern.FindStringSubmatch(url)
	if match == nil || len(match[7]) != videoIDLength {
		return "", apperrors.New(apperrors.CodeInvalidURLFormat, "Invalid YouTube URL format")
	}
	return match[7], nil
}
