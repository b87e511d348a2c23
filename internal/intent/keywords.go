package intent

import "strings"

// Keyword lists driving the fast path of intent detection. The product
// serves a bilingual audience, so Spanish and English terms sit side by
// side.
var (
	codeGenerationKeywords = []string{
		"genera", "crea", "construye", "haz", "desarrolla",
		"código", "aplicación", "app", "website", "web", "sitio",
		"landing", "dashboard", "ecommerce", "tienda",
		"pantalla", "interfaz", "componente", "página", "formulario",
		"build", "create", "develop", "make", "design", "implement",
	}

	modificationKeywords = []string{
		"modifica", "cambia", "actualiza", "mejora", "agrega", "añade",
		"quita", "elimina", "corrige", "arregla", "ajusta", "edita",
		"modify", "change", "update", "improve", "add", "remove",
		"fix", "edit", "adjust",
	}

	documentReferenceKeywords = []string{
		"pdf", "documento", "archivo", "imagen", "prd", "wireframe",
		"diseño", "especificación", "requerimiento",
		"este documento", "el documento", "la imagen", "el archivo",
		"document", "file", "image", "spec", "requirement",
	}
)

// ReferencesDocument reports whether the prompt explicitly mentions an
// uploaded document.
func ReferencesDocument(prompt string) bool {
	return containsAny(prompt, documentReferenceKeywords)
}

func containsAny(prompt string, keywords []string) bool {
	return matchCount(prompt, keywords) > 0
}

// matchCount counts keywords found as substrings of the lowercased
// prompt.
func matchCount(prompt string, keywords []string) int {
	lower := strings.ToLower(prompt)
	count := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			count++
		}
	}
	return count
}
