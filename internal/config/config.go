package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
)

type Editor struct {
	UndoCapacity int `toml:"undo_capacity"`
	QueryLimit   int `toml:"query_limit"`
	GotoLimit    int `toml:"goto_limit"`
	WarningMs    int `toml:"warning_ms"`
	FrameMs      int `toml:"frame_ms"`
}

func (e Editor) WarningDuration() time.Duration {
	return time.Duration(e.WarningMs) * time.Millisecond
}

func (e Editor) FrameInterval() time.Duration {
	return time.Duration(e.FrameMs) * time.Millisecond
}

type Theme struct {
	CursorBackground  string `toml:"cursor_background"`
	PendingBackground string `toml:"pending_background"`
	InsertBackground  string `toml:"insert_background"`
	ShadowBackground  string `toml:"shadow_background"`
	OffsetColor       string `toml:"offset_color"`
	IndexMarker       string `toml:"index_marker_background"`
	StatusBackground  string `toml:"status_background"`
	StatusForeground  string `toml:"status_foreground"`
	WarningColor      string `toml:"warning_color"`
	NoticeColor       string `toml:"notice_color"`
	ModifiedColor     string `toml:"modified_color"`
	NonPrintableColor string `toml:"non_printable_color"`
	BorderColor       string `toml:"border_color"`
}

type Config struct {
	Editor Editor `toml:"editor"`
	Theme  Theme  `toml:"theme"`
}

func DefaultConfig() *Config {
	return &Config{
		Editor: Editor{
			UndoCapacity: 1024,
			QueryLimit:   64,
			GotoLimit:    20,
			WarningMs:    2000,
			FrameMs:      50,
		},
		Theme: Theme{
			CursorBackground:  "#0000FF",
			PendingBackground: "#FFFF00",
			InsertBackground:  "#FF0000",
			ShadowBackground:  "#333333",
			OffsetColor:       "#888888",
			IndexMarker:       "#000080",
			StatusBackground:  "#0000FF",
			StatusForeground:  "#FFFFFF",
			WarningColor:      "#FF0000",
			NoticeColor:       "#00FF00",
			ModifiedColor:     "#FF0000",
			NonPrintableColor: "#666666",
			BorderColor:       "#0000FF",
		},
	}
}

// Dir resolves the configuration directory: $BYTEDIT_CONFIG_HOME, then
// $XDG_CONFIG_HOME/bytedit, then ~/.config/bytedit.
func Dir() (string, error) {
	if v := os.Getenv("BYTEDIT_CONFIG_HOME"); v != "" {
		return v, nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "bytedit"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "bytedit"), nil
}

func ConfigPath() string {
	dir, err := Dir()
	if err != nil {
		return "bytedit.toml"
	}
	return filepath.Join(dir, "bytedit.toml")
}

func Load() (*Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile decodes path over the defaults. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return DefaultConfig(), err
	}

	cfg.normalize()
	return cfg, nil
}

// normalize replaces nonsensical editor values with defaults.
func (c *Config) normalize() {
	def := DefaultConfig().Editor
	if c.Editor.UndoCapacity <= 0 {
		c.Editor.UndoCapacity = def.UndoCapacity
	}
	if c.Editor.QueryLimit <= 0 {
		c.Editor.QueryLimit = def.QueryLimit
	}
	if c.Editor.GotoLimit <= 0 {
		c.Editor.GotoLimit = def.GotoLimit
	}
	if c.Editor.WarningMs <= 0 {
		c.Editor.WarningMs = def.WarningMs
	}
	if c.Editor.FrameMs <= 0 {
		c.Editor.FrameMs = def.FrameMs
	}
}

func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

type Styles struct {
	Cursor      lipgloss.Style
	Pending     lipgloss.Style
	Insert      lipgloss.Style
	Shadow      lipgloss.Style
	Offset      lipgloss.Style
	IndexMarker lipgloss.Style
	Status      lipgloss.Style
	Warning     lipgloss.Style
	Notice      lipgloss.Style
	Modified    lipgloss.Style
	NonPrint    lipgloss.Style
	Border      lipgloss.Style
	Normal      lipgloss.Style
	HelpTitle   lipgloss.Style
}

func NewStyles(theme *Theme) *Styles {
	return &Styles{
		Cursor: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.CursorBackground)).
			Foreground(lipgloss.Color("#FFFFFF")),
		Pending: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.PendingBackground)).
			Foreground(lipgloss.Color("#000000")),
		Insert: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.InsertBackground)).
			Foreground(lipgloss.Color("#FFFFFF")),
		Shadow: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.ShadowBackground)),
		Offset: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.OffsetColor)),
		IndexMarker: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.IndexMarker)).
			Foreground(lipgloss.Color("#FFFFFF")),
		Status: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.StatusBackground)).
			Foreground(lipgloss.Color(theme.StatusForeground)),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.WarningColor)).
			Bold(true),
		Notice: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.NoticeColor)),
		Modified: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.ModifiedColor)),
		NonPrint: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.NonPrintableColor)),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(theme.BorderColor)),
		Normal: lipgloss.NewStyle(),
		HelpTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")),
	}
}
