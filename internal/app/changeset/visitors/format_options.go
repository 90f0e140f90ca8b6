package visitors

import (
	"maps"

	"github.com/light-bringer/procat-changeset/internal/app/changeset/domain"
)

// Default display formats.
const (
	DefaultDateLayout     = "2006-01-02"
	DefaultTimeLayout     = "15:04:05"
	DefaultDateTimeLayout = "2006-01-02 15:04:05"
	DefaultCheckedLabel   = "Checked"
	DefaultUncheckedLabel = "Unchecked"
	DefaultFloatPrecision = 2
)

// BooleanLabels are the display strings of boolean values.
type BooleanLabels struct {
	Checked   string
	Unchecked string
}

// FormatOptions controls how field values are rendered.
type FormatOptions struct {
	// DateLayouts maps a temporal kind to a time.Format layout
	DateLayouts    map[domain.TemporalKind]string
	BooleanLabels  BooleanLabels
	FloatPrecision int
}

// DefaultFormatOptions returns the default display formats.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{
		DateLayouts: map[domain.TemporalKind]string{
			domain.TemporalDate:     DefaultDateLayout,
			domain.TemporalTime:     DefaultTimeLayout,
			domain.TemporalDateTime: DefaultDateTimeLayout,
		},
		BooleanLabels: BooleanLabels{
			Checked:   DefaultCheckedLabel,
			Unchecked: DefaultUncheckedLabel,
		},
		FloatPrecision: DefaultFloatPrecision,
	}
}

// withDefaults fills unset options from DefaultFormatOptions.
func (o FormatOptions) withDefaults() FormatOptions {
	defaults := DefaultFormatOptions()

	layouts := maps.Clone(defaults.DateLayouts)
	for kind, layout := range o.DateLayouts {
		if layout != "" {
			layouts[kind] = layout
		}
	}
	o.DateLayouts = layouts

	if o.BooleanLabels.Checked == "" {
		o.BooleanLabels.Checked = defaults.BooleanLabels.Checked
	}
	if o.BooleanLabels.Unchecked == "" {
		o.BooleanLabels.Unchecked = defaults.BooleanLabels.Unchecked
	}
	if o.FloatPrecision < 0 {
		o.FloatPrecision = defaults.FloatPrecision
	}

	return o
}
