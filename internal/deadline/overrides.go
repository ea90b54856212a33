package deadline

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Overrides maps a milestone to a manually chosen date. Computed dates are never modified;
// the override only changes the effective date.
type Overrides map[Milestone]time.Time

// ParseOverrides validates caller supplied milestone names and ISO dates.
func ParseOverrides(raw map[string]string) (Overrides, error) {
	overrides := make(Overrides, len(raw))
	for name, value := range raw {
		m := Milestone(name)
		if !m.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMilestone, name)
		}
		if value == "" {
			continue
		}
		d, err := ParseDate(value)
		if err != nil {
			return nil, fmt.Errorf("override %s: %w", name, err)
		}
		overrides[m] = d
	}
	return overrides, nil
}

// Strings renders the overrides as milestone name → YYYY-MM-DD.
func (o Overrides) Strings() map[string]string {
	out := make(map[string]string, len(o))
	for m, d := range o {
		out[string(m)] = FormatDate(d)
	}
	return out
}

// Value stores the overrides as a JSON object of ISO dates.
func (o Overrides) Value() (driver.Value, error) {
	if o == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(o.Strings())
}

// Scan reads a JSON object of ISO dates.
func (o *Overrides) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*o = Overrides{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("overrides: unsupported source type %T", src)
	}

	raw := map[string]string{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("overrides: %w", err)
	}
	parsed, err := ParseOverrides(raw)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
