package query

import "strings"

// intentMapping binds a canonical intent phrase to the curated search
// terms that retrieve the right rules for it. Matching is by substring
// of the lowercased input, checked in declaration order so that more
// specific phrases win over generic ones.
type intentMapping struct {
	Intent string
	Terms  string
}

var intentMappings = []intentMapping{
	{"http request", "http client async httpx aiohttp"},
	{"http-request", "http client async httpx aiohttp"},
	{"error handling", "exception error traceback except logging"},
	{"error-handling", "exception error traceback except logging"},
	{"dependency injection", "dependency injection provider container"},
	{"dependency-injection", "dependency injection provider container"},
	{"package management", "pip install dependency requirements version pin"},
	{"package-management", "pip install dependency requirements version pin"},
	{"testing", "test pytest assert fixture mock"},
	{"linting", "lint style format import wildcard"},
	{"database", "database sqlite connection path configuration"},
	{"security", "security secret eval exec shell injection"},
	{"async", "async await asyncio blocking coroutine"},
	{"api", "api endpoint request response client"},
}

// resolveIntent maps free text to a search query. If no canonical intent
// phrase appears in the input, the raw input is used verbatim.
func resolveIntent(text string) (query string, intent string) {
	lowered := strings.ToLower(text)
	for _, m := range intentMappings {
		if strings.Contains(lowered, m.Intent) {
			return m.Terms, m.Intent
		}
	}
	return text, ""
}
