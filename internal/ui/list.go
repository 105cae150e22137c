package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/wallview/internal/models"
)

var _ list.Item = categoryItem{}

// categoryItem wraps [models.Category] to implement [list.Item].
type categoryItem struct {
	category models.Category
}

func (i categoryItem) FilterValue() string { return i.category.Name }
func (i categoryItem) Title() string       { return i.category.Name }
func (i categoryItem) Description() string {
	if i.category.FolderPath == "" {
		return "wallpapers"
	}
	return fmt.Sprintf("wallpapers • %s", i.category.FolderPath)
}
