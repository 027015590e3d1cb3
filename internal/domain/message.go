package domain

// Button is a quick-reply option; ID comes back as the inbound payload
type Button struct {
	ID    string
	Title string
}

// ListRow is one selectable entry of an interactive list
type ListRow struct {
	ID          string
	Title       string
	Description string
}

// ListSection groups rows under a header
type ListSection struct {
	Title string
	Rows  []ListRow
}

// ListMessage is a structured selection prompt
type ListMessage struct {
	Header     string
	Body       string
	Footer     string
	ButtonText string
	Sections   []ListSection
}

// Rows flattens all sections preserving order
func (l ListMessage) Rows() []ListRow {
	var rows []ListRow
	for _, s := range l.Sections {
		rows = append(rows, s.Rows...)
	}
	return rows
}
