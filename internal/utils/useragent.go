package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DescribeDevice condenses a User-Agent string into a short label recorded
// on payment audit entries, e.g. "mobile / Android 13 / Chrome".
func DescribeDevice(userAgent string) string {
	if userAgent == "" || userAgent == "Unknown" {
		return "unknown"
	}

	parser := ua.New(userAgent)

	deviceType := "desktop"
	if parser.Mobile() {
		deviceType = "mobile"
	}
	if parser.Bot() {
		deviceType = "bot"
	}

	osInfo := parser.OSInfo()
	os := osInfo.Name
	if osInfo.Version != "" {
		os = os + " " + osInfo.Version
	}
	if os == "" {
		os = "Unknown"
	}

	browser, _ := parser.Browser()
	if browser == "" {
		browser = "Unknown"
	}

	return strings.Join([]string{deviceType, os, browser}, " / ")
}
