// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package reports

import (
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/mozillazg/go-unidecode"
)

// pdfText converts UTF-8 to the cp1252 encoding of the core PDF fonts.
// Runes outside Latin-1 are transliterated to ASCII first, so "Łódź" prints as
// "Lodz" instead of question marks.
type pdfText func(string) string

func newPDFText(pdf *fpdf.Fpdf) pdfText {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	return func(s string) string {
		if strings.IndexFunc(s, func(r rune) bool { return r > 0xFF }) >= 0 {
			s = unidecode.Unidecode(s)
		}
		return tr(s)
	}
}
