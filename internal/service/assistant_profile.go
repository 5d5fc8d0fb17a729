package service

import (
	"os"
	"strings"

	"support-assistant-be/internal/constant"
)

// LoadAssistantProfile reads the assistant's persona text from path. A
// missing or empty file falls back to the in-code default profile.
func LoadAssistantProfile(path string) string {
	if path == "" {
		return constant.DefaultAssistantProfile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return constant.DefaultAssistantProfile
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return constant.DefaultAssistantProfile
	}
	return content
}
