package entity

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultLocation ubicación para instalaciones de un solo local.
const DefaultLocation = "default"

// NormalizeLocation recorta y normaliza a NFC el identificador de ubicación,
// de modo que dos códigos visualmente iguales caigan en la misma partición.
func NormalizeLocation(location string) string {
	l := norm.NFC.String(strings.TrimSpace(location))
	if l == "" {
		return DefaultLocation
	}
	return l
}
