package tui

import "github.com/charmbracelet/bubbles/key"

// Raw key strings shared by the models.
const (
	keyQuit  = "q"
	keyCtrlC = "ctrl+c"
	keyEnter = "enter"
	keyEsc   = "esc"
	keySlash = "/"
	keyYes   = "y"
	keyNo    = "n"
)

// KeyMap binds the list screen's actions.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	Search      key.Binding
	Sort        key.Binding
	PageSize    key.Binding
	Refresh     key.Binding
	Toggle      key.Binding
	Compose     key.Binding
	Edit        key.Binding
	SyncLabels  key.Binding
	Delete      key.Binding
	DeleteAll   key.Binding
	Detail      key.Binding
	Dismiss     key.Binding
	Help        key.Binding
	Quit        key.Binding
	Back        key.Binding
	PageSizeUp  key.Binding
	PageSizeDn  key.Binding
	SortColumns []key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		NextPage:   key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next page")),
		PrevPage:   key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "prev page")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Sort:       key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "sort")),
		PageSize:   key.NewBinding(key.WithKeys("+", "-"), key.WithHelp("+/-", "page size")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Toggle:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "pause/resume")),
		Compose:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "new")),
		Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		SyncLabels: key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "sync names")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		DeleteAll:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete all")),
		Detail:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Dismiss:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		PageSizeUp: key.NewBinding(key.WithKeys("+", "=")),
		PageSizeDn: key.NewBinding(key.WithKeys("-", "_")),
		SortColumns: []key.Binding{
			key.NewBinding(key.WithKeys("1")),
			key.NewBinding(key.WithKeys("2")),
			key.NewBinding(key.WithKeys("3")),
			key.NewBinding(key.WithKeys("4")),
		},
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Compose, k.Search, k.NextPage, k.PrevPage, k.Sort, k.Refresh, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPage, k.PrevPage},
		{k.Search, k.Sort, k.PageSize, k.Refresh},
		{k.Compose, k.Edit, k.Detail, k.Toggle},
		{k.Delete, k.DeleteAll, k.SyncLabels},
		{k.Dismiss, k.Help, k.Quit},
	}
}
