package models

// GeneralPreference is a process-wide writing preference, one value per key.
type GeneralPreference struct {
	Key   string `json:"preference_key" bson:"_id"`
	Value string `json:"preference_value" bson:"value"`
}

// ActionPreference is a recipient-scoped writing preference, unique per
// (recipient, key) pair, with provenance pointing to the action whose
// modification produced it.
type ActionPreference struct {
	PreferenceID   string `json:"preference_id" bson:"_id"`
	RecipientEmail string `json:"recipient_email" bson:"recipientEmail"`
	Key            string `json:"preference_key" bson:"key"`
	Value          string `json:"preference_value" bson:"value"`
	SourceActionID string `json:"source_action_id,omitempty" bson:"sourceActionId,omitempty"`
}

// PreferenceExtraction is the sparse result of the extract-preferences
// capability: only fields the model could clearly infer are set.
type PreferenceExtraction struct {
	Tone       string `json:"tone,omitempty"`
	Greeting   string `json:"greeting,omitempty"`
	Signature  string `json:"signature,omitempty"`
	Length     string `json:"length,omitempty"`
	ExtraField string `json:"extra_field,omitempty"`
}

// ToMap returns only the populated fields.
func (p PreferenceExtraction) ToMap() map[string]string {
	out := map[string]string{}
	if p.Tone != "" {
		out["tone"] = p.Tone
	}
	if p.Greeting != "" {
		out["greeting"] = p.Greeting
	}
	if p.Signature != "" {
		out["signature"] = p.Signature
	}
	if p.Length != "" {
		out["length"] = p.Length
	}
	if p.ExtraField != "" {
		out["extra_field"] = p.ExtraField
	}
	return out
}

// DraftingPreferences is the merged, request-scoped preference set consumed by
// the draft capability. It is built fresh per draft request and never
// persisted; only its inputs (general and recipient preferences) are stored.
type DraftingPreferences struct {
	Tone       string            `json:"tone,omitempty"`
	Greeting   string            `json:"greeting,omitempty"`
	Signature  string            `json:"signature,omitempty"`
	Length     string            `json:"length,omitempty"`
	ExtraField string            `json:"extra_field,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// Apply sets one key to value. The five named fields are addressed by their
// key; anything else lands in Additional.
func (d *DraftingPreferences) Apply(key, value string) {
	switch key {
	case "tone":
		d.Tone = value
	case "greeting":
		d.Greeting = value
	case "signature":
		d.Signature = value
	case "length":
		d.Length = value
	case "extra_field":
		d.ExtraField = value
	default:
		if d.Additional == nil {
			d.Additional = map[string]string{}
		}
		d.Additional[key] = value
	}
}

// ApplyAll applies every key/value in the map.
func (d *DraftingPreferences) ApplyAll(prefs map[string]string) {
	for key, value := range prefs {
		d.Apply(key, value)
	}
}

// IsEmpty reports whether no field and no additional key is set.
func (d *DraftingPreferences) IsEmpty() bool {
	if d.Tone != "" || d.Greeting != "" || d.Signature != "" || d.Length != "" || d.ExtraField != "" {
		return false
	}
	return len(d.Additional) == 0
}

// PromptLines renders the set as "key: value" lines for prompt construction.
func (d *DraftingPreferences) PromptLines() []string {
	var lines []string
	for _, f := range []struct{ key, value string }{
		{"tone", d.Tone},
		{"greeting", d.Greeting},
		{"signature", d.Signature},
		{"length", d.Length},
		{"extra_field", d.ExtraField},
	} {
		if f.value != "" {
			lines = append(lines, f.key+": "+f.value)
		}
	}
	for key, value := range d.Additional {
		lines = append(lines, key+": "+value)
	}
	return lines
}
