package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var maneuverText = map[string]string{
	"depart":          "Salir",
	"arrive":          "Llegar al destino",
	"continue":        "Continuar",
	"new name":        "Continuar",
	"roundabout":      "Entrar en la rotonda",
	"exit roundabout": "Salir de la rotonda",
	"rotary":          "Entrar en la glorieta",
	"merge":           "Incorporarse",
	"on ramp":         "Tomar la rampa de acceso",
	"off ramp":        "Tomar la salida",
	"notification":    "",
}

var modifierText = map[string]string{
	"left":         "a la izquierda",
	"right":        "a la derecha",
	"slight left":  "ligeramente a la izquierda",
	"slight right": "ligeramente a la derecha",
	"sharp left":   "fuerte a la izquierda",
	"sharp right":  "fuerte a la derecha",
	"straight":     "de frente",
	"uturn":        "giro en U",
}

// StepText renders one road-engine maneuver as a Spanish instruction.
// Unknown modifiers pass through untranslated. The result is never empty.
func StepText(maneuver, modifier, name string) string {
	var text string

	if t, ok := maneuverText[maneuver]; ok {
		text = t
	} else {
		switch maneuver {
		case "turn":
			text = "Girar " + modifierPhrase(modifier)
		case "end of road":
			text = "Final de calle, girar " + modifierPhrase(modifier)
		case "fork":
			text = "Desvío " + modifierPhrase(modifier)
		default:
			text = capitalize(strings.ReplaceAll(maneuver, "_", " "))
			if modifier != "" {
				text += " " + modifierPhrase(modifier)
			}
		}
	}

	if name != "" {
		text += " por " + name
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "Continuar"
	}
	return text
}

func modifierPhrase(modifier string) string {
	if t, ok := modifierText[modifier]; ok {
		return t
	}
	return modifier
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
