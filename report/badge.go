package report

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

type BadgeVariant string

const (
	BadgeVariantSecondary BadgeVariant = "secondary"
	BadgeVariantSuccess   BadgeVariant = "success"
	BadgeVariantWarning   BadgeVariant = "warning"
	BadgeVariantError     BadgeVariant = "error"
	BadgeVariantOutline   BadgeVariant = "outline"
)

type BadgeProps struct {
	Variant BadgeVariant
	Class   string
}

func badgeClasses(props BadgeProps) string {
	classes := []string{"badge"}

	switch props.Variant {
	case BadgeVariantSecondary, BadgeVariantSuccess, BadgeVariantWarning, BadgeVariantError, BadgeVariantOutline:
		classes = append(classes, "badge-"+string(props.Variant))
	default:
		classes = append(classes, "badge-default")
	}

	if props.Class != "" {
		classes = append(classes, props.Class)
	}

	return strings.Join(classes, " ")
}

// statusVariant maps a test status to its badge.
func statusVariant(s Status) BadgeVariant {
	switch s {
	case StatusPassed:
		return BadgeVariantSuccess
	case StatusFailed:
		return BadgeVariantError
	case StatusSkipped:
		return BadgeVariantWarning
	default:
		return BadgeVariantSecondary
	}
}

func badge(props BadgeProps, text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<span class="`+templ.EscapeString(badgeClasses(props))+`">`+templ.EscapeString(text)+`</span>`)
		return err
	})
}

type ButtonVariant string

const (
	ButtonVariantDefault   ButtonVariant = ""
	ButtonVariantOutline   ButtonVariant = "outline"
	ButtonVariantSecondary ButtonVariant = "secondary"
)

type ButtonProps struct {
	Variant ButtonVariant
	Class   string
	// Filter is the test status the button shows, empty for all.
	Filter Status
}

func buttonClasses(props ButtonProps) string {
	classes := []string{"button"}

	switch props.Variant {
	case ButtonVariantOutline:
		classes = append(classes, "button-outline")
	case ButtonVariantSecondary:
		classes = append(classes, "button-secondary")
	default:
		classes = append(classes, "button-default")
	}

	if props.Class != "" {
		classes = append(classes, props.Class)
	}

	return strings.Join(classes, " ")
}

func filterButton(props ButtonProps, text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<button type="button" class="`+templ.EscapeString(buttonClasses(props))+
			`" data-filter="`+templ.EscapeString(string(props.Filter))+`">`+templ.EscapeString(text)+`</button>`)
		return err
	})
}
