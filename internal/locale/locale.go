// Package locale holds the user-facing strings of the validation workflow and
// renders them for a requested language.
package locale

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. The English text doubles as the key, as x/text expects.
const (
	MsgNoUser            = "No authenticated user: sign in before registering hours."
	MsgNoPlan            = "You have no daily plan for %s. Create and submit one before registering hours."
	MsgPlanNotSubmitted  = "Your daily plan for %s is still %s. Submit it before registering hours."
	MsgValidationSkipped = "Plan validation was skipped: the plan registry could not be reached."

	MsgPromptTitle  = "Daily plan required"
	MsgPromptCreate = "Create plan"
	MsgPromptCancel = "Cancel"
	MsgPromptRoute  = "Plan authoring: %s"
	MsgRegistered   = "Registered %d min on %s."
	MsgTotalMinutes = "%d min planned"
)

var supported = []language.Tag{language.English, language.Spanish}

var matcher = language.NewMatcher(supported)

func init() {
	es := language.Spanish
	set := func(key, text string) {
		_ = message.SetString(es, key, text)
	}
	set(MsgNoUser, "No hay un usuario autenticado: inicia sesión antes de registrar horas.")
	set(MsgNoPlan, "No tienes un plan diario para %s. Crea y envía uno antes de registrar horas.")
	set(MsgPlanNotSubmitted, "Tu plan diario para %s sigue en estado %s. Envíalo antes de registrar horas.")
	set(MsgValidationSkipped, "Se omitió la validación del plan: no se pudo consultar el registro de planes.")
	set(MsgPromptTitle, "Se requiere un plan diario")
	set(MsgPromptCreate, "Crear plan")
	set(MsgPromptCancel, "Cancelar")
	set(MsgPromptRoute, "Crear el plan en: %s")
	set(MsgRegistered, "Se registraron %d min el %s.")
	set(MsgTotalMinutes, "%d min planificados")
}

// Translator renders message keys in one language. The zero value is not
// usable; call New.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Translator for the closest supported match of locale
// (a BCP 47 tag such as "es-MX"). Unknown or empty locales fall back to English.
func New(locale string) *Translator {
	tag := language.English
	if locale != "" {
		if parsed, err := language.Parse(locale); err == nil {
			_, idx, conf := matcher.Match(parsed)
			if conf != language.No {
				tag = supported[idx]
			}
		}
	}
	return &Translator{tag: tag, printer: message.NewPrinter(tag)}
}

// Tag is the resolved language.
func (t *Translator) Tag() language.Tag {
	return t.tag
}

// Sprintf formats key with args in the translator's language.
func (t *Translator) Sprintf(key string, args ...any) string {
	return t.printer.Sprintf(key, args...)
}

var monthsES = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Date renders a calendar date for display.
func (t *Translator) Date(d time.Time) string {
	if t.tag == language.Spanish {
		return fmt.Sprintf("%d de %s de %d", d.Day(), monthsES[d.Month()-1], d.Year())
	}
	return d.Format("January 2, 2006")
}
