// https://developers.notion.com/reference/post-database-query
package notion

import (
	"strings"

	"github.com/acuellar/estudiobot/internal/tasks"
)

type queryRequest struct {
	Filter queryFilter `json:"filter"`
	Sorts  []querySort `json:"sorts"`
}

type queryFilter struct {
	Property string        `json:"property"`
	Date     dateCondition `json:"date"`
}

type dateCondition struct {
	OnOrAfter string `json:"on_or_after"`
}

type querySort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

type queryResponse struct {
	Results []page `json:"results"`
}

type page struct {
	ID         string              `json:"id"`
	URL        string              `json:"url"`
	Properties map[string]property `json:"properties"`
}

// property is the union of the Notion property shapes this client reads.
type property struct {
	Type        string         `json:"type"`
	Title       []richText     `json:"title"`
	RichText    []richText     `json:"rich_text"`
	Select      *selectOption  `json:"select"`
	MultiSelect []selectOption `json:"multi_select"`
	Date        *dateValue     `json:"date"`
}

type richText struct {
	PlainText string `json:"plain_text"`
}

type selectOption struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
}

// toTask converts a raw page to a Task. Pages without a due date are
// rejected.
func (p page) toTask(props Properties) (tasks.Task, bool) {
	dateProp := p.Properties[props.Date]
	if dateProp.Type != "date" || dateProp.Date == nil || dateProp.Date.Start == "" {
		return tasks.Task{}, false
	}

	task := tasks.Task{
		Due:     dateProp.Date.Start,
		Title:   "Sin Título",
		Subject: "Sin Materia",
		URL:     p.URL,
	}

	titleProp := p.Properties[props.Title]
	switch {
	case titleProp.Type == "title" && len(titleProp.Title) > 0:
		task.Title = joinPlainText(titleProp.Title)
	case titleProp.Type == "rich_text" && len(titleProp.RichText) > 0:
		// Fallback if the title is actually a rich_text field
		task.Title = joinPlainText(titleProp.RichText)
	}

	subjectProp := p.Properties[props.Subject]
	switch {
	case subjectProp.Type == "select" && subjectProp.Select != nil:
		task.Subject = subjectProp.Select.Name
	case subjectProp.Type == "multi_select" && len(subjectProp.MultiSelect) > 0:
		names := make([]string, 0, len(subjectProp.MultiSelect))
		for _, option := range subjectProp.MultiSelect {
			names = append(names, option.Name)
		}
		task.Subject = strings.Join(names, ", ")
	case subjectProp.Type == "title" && len(subjectProp.Title) > 0:
		task.Subject = joinPlainText(subjectProp.Title)
	}

	contentProp := p.Properties[props.Content]
	if contentProp.Type == "rich_text" && len(contentProp.RichText) > 0 {
		task.Content = joinPlainText(contentProp.RichText)
	}

	return task, true
}

func joinPlainText(fragments []richText) string {
	parts := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		parts = append(parts, fragment.PlainText)
	}
	return strings.Join(parts, "")
}
