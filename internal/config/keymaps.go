package config

// KeyMappings lists the keys bound to each board action. Several keys may share an action;
// an empty list falls back to the default.
type KeyMappings struct {
	// Overlays
	Close         []string `yaml:"close"`
	DismissToasts []string `yaml:"dismiss_toasts"`
	Help          []string `yaml:"help"`

	// Cards
	AddCard []string `yaml:"add_card"`
	Suggest []string `yaml:"suggest"`
	Menu    []string `yaml:"menu"`
	Submit  []string `yaml:"submit"`

	// Selection
	SelectUp    []string `yaml:"select_up"`
	SelectDown  []string `yaml:"select_down"`
	SelectLeft  []string `yaml:"select_left"`
	SelectRight []string `yaml:"select_right"`

	// Nudge (keyboard drag of the selected card by one cell)
	NudgeUp    []string `yaml:"nudge_up"`
	NudgeDown  []string `yaml:"nudge_down"`
	NudgeLeft  []string `yaml:"nudge_left"`
	NudgeRight []string `yaml:"nudge_right"`

	Reload []string `yaml:"reload"`
	Quit   []string `yaml:"quit"`
}

// DefaultKeyMappings returns the built-in bindings. Terminals deliver Ctrl+I as tab and cannot
// tell Ctrl+Shift+S from Ctrl+S, so those are bound in their delivered form.
func DefaultKeyMappings() KeyMappings {
	return KeyMappings{
		Close:         []string{"esc"},
		DismissToasts: []string{"x"},
		Help:          []string{"?"},

		AddCard: []string{"tab", "a"},
		Suggest: []string{"ctrl+s", "s"},
		Menu:    []string{"m", "enter"},
		Submit:  []string{"ctrl+s"},

		SelectUp:    []string{"up", "k"},
		SelectDown:  []string{"down", "j"},
		SelectLeft:  []string{"left", "h"},
		SelectRight: []string{"right", "l"},

		NudgeUp:    []string{"K"},
		NudgeDown:  []string{"J"},
		NudgeLeft:  []string{"H"},
		NudgeRight: []string{"L"},

		Reload: []string{"r"},
		Quit:   []string{"q", "ctrl+c"},
	}
}

func (k *KeyMappings) applyDefaults() {
	d := DefaultKeyMappings()
	fill := func(dst *[]string, def []string) {
		if len(*dst) == 0 {
			*dst = def
		}
	}
	fill(&k.Close, d.Close)
	fill(&k.DismissToasts, d.DismissToasts)
	fill(&k.Help, d.Help)
	fill(&k.AddCard, d.AddCard)
	fill(&k.Suggest, d.Suggest)
	fill(&k.Menu, d.Menu)
	fill(&k.Submit, d.Submit)
	fill(&k.SelectUp, d.SelectUp)
	fill(&k.SelectDown, d.SelectDown)
	fill(&k.SelectLeft, d.SelectLeft)
	fill(&k.SelectRight, d.SelectRight)
	fill(&k.NudgeUp, d.NudgeUp)
	fill(&k.NudgeDown, d.NudgeDown)
	fill(&k.NudgeLeft, d.NudgeLeft)
	fill(&k.NudgeRight, d.NudgeRight)
	fill(&k.Reload, d.Reload)
	fill(&k.Quit, d.Quit)
}
