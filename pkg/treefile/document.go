// SPDX-License-Identifier: MPL-2.0

package treefile

type (
	// ModuleSpec is a module as declared in a tree file. The document root
	// decodes into a ModuleSpec without aliases.
	ModuleSpec struct {
		Name        string        `json:"name"`
		Description string        `json:"description,omitempty"`
		Aliases     []string      `json:"aliases,omitempty"`
		Checks      []CheckRef    `json:"checks,omitempty"`
		Before      string        `json:"before,omitempty"`
		After       string        `json:"after,omitempty"`
		Commands    []CommandSpec `json:"commands,omitempty"`
		Modules     []ModuleSpec  `json:"modules,omitempty"`
	}

	// CommandSpec is a declared command. Handler names an entry in
	// Bindings.Handlers.
	CommandSpec struct {
		Name        string          `json:"name"`
		Handler     string          `json:"handler"`
		Description string          `json:"description,omitempty"`
		Aliases     []string        `json:"aliases,omitempty"`
		Priority    int             `json:"priority,omitempty"`
		RunMode     string          `json:"run_mode,omitempty"`
		Disabled    bool            `json:"disabled,omitempty"`
		Checks      []CheckRef      `json:"checks,omitempty"`
		Cooldowns   []CooldownSpec  `json:"cooldowns,omitempty"`
		Parameters  []ParameterSpec `json:"parameters,omitempty"`
	}

	// ParameterSpec is a declared parameter.
	ParameterSpec struct {
		Name        string              `json:"name"`
		Type        string              `json:"type"`
		Description string              `json:"description,omitempty"`
		Optional    bool                `json:"optional,omitempty"`
		Default     *string             `json:"default,omitempty"`
		Nullable    bool                `json:"nullable,omitempty"`
		Remainder   bool                `json:"remainder,omitempty"`
		Multiple    bool                `json:"multiple,omitempty"`
		Parser      string              `json:"parser,omitempty"`
		Checks      []ParameterCheckRef `json:"checks,omitempty"`
	}

	// CheckRef names a bound check and optionally overrides its group.
	CheckRef struct {
		Name  string `json:"name"`
		Group string `json:"group,omitempty"`
	}

	// ParameterCheckRef names a bound or bundled parameter check.
	ParameterCheckRef struct {
		Name          string   `json:"name"`
		Group         string   `json:"group,omitempty"`
		Value         *float64 `json:"value,omitempty"`
		Text          *string  `json:"text,omitempty"`
		CaseSensitive bool     `json:"case_sensitive,omitempty"`
	}

	// CooldownSpec declares one rate limit. Per is a Go duration literal.
	CooldownSpec struct {
		Amount int    `json:"amount"`
		Per    string `json:"per"`
		Bucket string `json:"bucket"`
		Key    string `json:"key,omitempty"`
	}
)
