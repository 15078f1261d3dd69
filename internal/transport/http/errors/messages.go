package errors

import (
	"fmt"

	"golang.org/x/text/language"
)

var (
	supported = []language.Tag{language.Italian, language.English}
	matcher   = language.NewMatcher(supported)
)

var catalog = map[string]map[language.Tag]string{
	"UNAUTHORIZED": {
		language.Italian: "Accesso richiesto.",
		language.English: "Authentication required.",
	},
	"FORBIDDEN": {
		language.Italian: "Non hai i permessi per questa operazione.",
		language.English: "You are not allowed to perform this action.",
	},
	"NOT_VERIFIED": {
		language.Italian: "Solo i residenti verificati possono pubblicare contenuti.",
		language.English: "Only verified residents can publish content.",
	},
	"VALIDATION_ERROR": {
		language.Italian: "Il campo %s non è valido.",
		language.English: "The %s field is invalid.",
	},
	"INVALID_REQUEST": {
		language.Italian: "Richiesta non valida.",
		language.English: "Invalid request.",
	},
	"NOT_FOUND": {
		language.Italian: "Elemento non trovato.",
		language.English: "Item not found.",
	},
	"CONFLICT": {
		language.Italian: "L'operazione è in conflitto con lo stato attuale.",
		language.English: "The request conflicts with the current state.",
	},
	"ALREADY_RESOLVED": {
		language.Italian: "Questo elemento è già stato moderato.",
		language.English: "This entry has already been resolved.",
	},
	"DUPLICATE_REPORT": {
		language.Italian: "Questo contenuto è già in attesa di revisione.",
		language.English: "This content is already awaiting review.",
	},
	"ALREADY_AWARDED": {
		language.Italian: "Il badge è già stato assegnato.",
		language.English: "The badge has already been awarded.",
	},
	"UNKNOWN_BADGE": {
		language.Italian: "Badge sconosciuto.",
		language.English: "Unknown badge.",
	},
	"NOT_OWNER": {
		language.Italian: "Solo l'autore può modificare questo contenuto.",
		language.English: "Only the owner can change this content.",
	},
	"NOT_SELLABLE": {
		language.Italian: "L'annuncio non è approvato o è già venduto.",
		language.English: "The listing is not approved or is already sold.",
	},
	"TOO_MANY_REQUESTS": {
		language.Italian: "Troppe richieste, riprova più tardi.",
		language.English: "Too many requests, try again later.",
	},
	"SERVICE_UNAVAILABLE": {
		language.Italian: "Servizio temporaneamente non disponibile.",
		language.English: "Service temporarily unavailable.",
	},
	"INTERNAL_ERROR": {
		language.Italian: "Si è verificato un errore interno.",
		language.English: "An internal error occurred.",
	},
}

// Negotiate picks the response language from an Accept-Language header; Italian is the default.
func Negotiate(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return language.Italian
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.Italian
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return language.Italian
	}
	return supported[index]
}

// Message renders the catalog entry for code. Unknown codes fall back to INTERNAL_ERROR.
func Message(lang language.Tag, code, field string) string {
	entry, ok := catalog[code]
	if !ok {
		entry = catalog["INTERNAL_ERROR"]
	}
	msg, ok := entry[lang]
	if !ok {
		msg = entry[language.Italian]
	}
	if code == "VALIDATION_ERROR" {
		if field == "" {
			field = "richiesta"
			if lang == language.English {
				field = "request"
			}
		}
		return fmt.Sprintf(msg, field)
	}
	return msg
}
