// Package address decomposes a free-text shipping address into person,
// contact, organization and location components.
//
// Extraction runs as ordered passes over a shrinking working copy of the
// text; each pass sees only what earlier passes left behind.
package address

import (
	"regexp"
	"strings"

	"github.com/sells-group/germplasm-cli/internal/model"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// phonePatterns are tried in order; the first that matches anywhere wins.
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+\d{1,3}[\s.\-]?\(?\d{1,4}\)?(?:[\s.\-]?\d{2,4}){2,4}`),
		regexp.MustCompile(`\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}`),
		regexp.MustCompile(`\d{10,}`),
	}

	partSeparator = regexp.MustCompile(`[,\r\n]+`)

	poBoxPattern = regexp.MustCompile(`(?i)(\bp\.?\s*o\.?\s*box\b|\bpost\s*office\s*box\b|\bpostbox\b|\bpob\b)`)
)

// Parse decomposes text into AddressComponents. It is a pure function of its
// input.
func Parse(text string) model.AddressComponents {
	var a model.AddressComponents
	work := text

	// 1. Email.
	if m := emailPattern.FindString(work); m != "" {
		a.Email = m
		work = strings.Replace(work, m, "", 1)
	}

	// 2. Phone.
	for _, re := range phonePatterns {
		if m := re.FindString(work); m != "" {
			a.Phone = strings.TrimSpace(m)
			work = strings.Replace(work, m, "", 1)
			break
		}
	}

	// 3. Parts.
	parts := splitParts(work)
	if len(parts) == 0 {
		return a
	}

	// 4. Name, from the first part only.
	a.FirstName, a.LastName = extractName(parts[0])

	// 5. Organization.
	orgIdx := -1
	for i, p := range parts {
		orgType, ok := classifyOrganization(p)
		if !ok {
			continue
		}
		orgIdx = i
		a.OrganizationType = orgType
		a.OrganizationName = organizationName(p, a)
		break
	}

	// 6. Leftover location parts.
	var rest []string
	for i, p := range parts {
		if i == orgIdx {
			continue
		}
		if a.FirstName != "" && strings.Contains(p, a.FirstName) {
			continue
		}
		rest = append(rest, p)
	}

	// 7. P.O. Box.
	for i, p := range rest {
		if poBoxPattern.MatchString(p) {
			a.POBox = p
			rest = append(rest[:i:i], rest[i+1:]...)
			break
		}
	}

	// 8. Street, city, country.
	switch {
	case len(rest) >= 3:
		a.Street = rest[0]
		a.City = rest[1]
		a.Country = rest[len(rest)-1]
	case len(rest) == 2:
		a.City = rest[0]
		a.Country = rest[1]
	case len(rest) == 1:
		if isCommonCountry(rest[0]) {
			a.Country = rest[0]
		} else {
			a.City = rest[0]
		}
	}

	return a
}

func splitParts(text string) []string {
	var parts []string
	for _, p := range partSeparator.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func extractName(part string) (first, last string) {
	var words []string
	for _, w := range strings.Fields(part) {
		if titles[strings.ToLower(strings.TrimRight(w, "."))] {
			continue
		}
		words = append(words, w)
	}
	switch {
	case len(words) >= 2:
		return words[0], words[1]
	case len(words) == 1:
		return "", words[0]
	default:
		return "", ""
	}
}

func classifyOrganization(part string) (string, bool) {
	lower := strings.ToLower(part)
	for _, kw := range orgKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.orgType, true
		}
	}
	return "", false
}

// organizationName keeps the words of part that are not titles, country
// tokens, or the already extracted person name.
func organizationName(part string, a model.AddressComponents) string {
	first := foldWord(a.FirstName)
	last := foldWord(a.LastName)

	var kept []string
	for _, w := range strings.Fields(part) {
		f := foldWord(w)
		if f == "" || titles[f] || countryTokens[f] {
			continue
		}
		if (first != "" && f == first) || (last != "" && f == last) {
			continue
		}
		kept = append(kept, w)
	}

	name := strings.Join(kept, " ")
	for _, s := range []string{a.Phone, a.Email} {
		if s != "" {
			name = strings.ReplaceAll(name, s, "")
		}
	}
	return strings.Join(strings.Fields(name), " ")
}

// isCommonCountry matches by plain substring, so "Kenyan Highlands" counts
// as Kenya and "Usage St" as USA.
func isCommonCountry(part string) bool {
	lower := strings.ToLower(part)
	for _, c := range commonCountries {
		if strings.Contains(lower, c) {
			return true
		}
	}
	return false
}
