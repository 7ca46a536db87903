// Package match ranks corpus records against partial identity queries using
// weighted multi-signal scoring.
package match

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/resolve-cli/internal/corpus"
	"github.com/sells-group/resolve-cli/internal/normalize"
	"github.com/sells-group/resolve-cli/pkg/weights"
)

// ErrInvalidQuery is returned when a query carries no signal at all.
var ErrInvalidQuery = eris.New("match: query must set at least one of name, website, phone, facebook")

// DefaultSearchLimit caps Search results when the caller passes no limit.
const DefaultSearchLimit = 5

// Query is a sparse set of identity signals. At least one field must be set.
type Query struct {
	Name     string `json:"name,omitempty" csv:"name"`
	Website  string `json:"website,omitempty" csv:"website"`
	Phone    string `json:"phone,omitempty" csv:"phone"`
	Facebook string `json:"facebook,omitempty" csv:"facebook"`
}

// IsEmpty reports whether no signal is present.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Name) == "" &&
		strings.TrimSpace(q.Website) == "" &&
		strings.TrimSpace(q.Phone) == "" &&
		strings.TrimSpace(q.Facebook) == ""
}

// Result is one ranked candidate.
type Result struct {
	Record     corpus.CompanyRecord `json:"record"`
	Score      int                  `json:"score"`
	Confidence int                  `json:"confidence"`

	// MatchedFields lists the query fields that semantically concur with the
	// record, computed independently of the score (see explain).
	MatchedFields []string `json:"matched_fields,omitempty"`

	// NameSimilarity is a Jaro-Winkler review aid between the query name and
	// the record's commercial name. Informational only; never affects order.
	NameSimilarity float64 `json:"name_similarity,omitempty"`
}

// Outcome is the full result shape of Match. "No confident match" is a
// normal outcome, not an error.
type Outcome struct {
	Confident    bool     `json:"confident"`
	Top          *Result  `json:"top,omitempty"`
	Alternatives []Result `json:"alternatives,omitempty"` // at most 2
	Potential    []Result `json:"potential,omitempty"`    // at most 3, sub-threshold
	GenerationID string   `json:"generation_id"`
}

// Matcher scores and ranks corpus records. It is stateless per call; any
// number of calls may run concurrently against one engine.
type Matcher struct {
	engine  *corpus.Engine
	weights weights.Table
}

// New creates a matcher over the engine with the given weight table.
func New(engine *corpus.Engine, w weights.Table) *Matcher {
	return &Matcher{engine: engine, weights: w}
}

// Match ranks candidates for q and gates the top result on the confidence
// threshold. Sub-threshold outcomes still surface up to 3 potential matches
// for caller-side review.
func (m *Matcher) Match(q Query) (*Outcome, error) {
	gen, results, err := m.rank(q)
	if err != nil {
		return nil, err
	}

	out := &Outcome{GenerationID: gen.ID}
	if len(results) == 0 {
		return out, nil
	}

	if results[0].Score > m.weights.ConfidentThreshold {
		out.Confident = true
		out.Top = &results[0]
		if len(results) > 1 {
			out.Alternatives = results[1:min(len(results), 3)]
		}
	} else {
		out.Potential = results[:min(len(results), 3)]
	}

	zap.L().Debug("match complete",
		zap.Bool("confident", out.Confident),
		zap.Int("candidates", len(results)),
		zap.String("generation_id", gen.ID),
	)
	return out, nil
}

// Search returns up to limit ranked candidates with no confidence gating.
func (m *Matcher) Search(q Query, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	_, results, err := m.rank(q)
	if err != nil {
		return nil, err
	}
	return results[:min(len(results), limit)], nil
}

// candidate accumulates a record's score. order is discovery order across
// the fixed signal sequence and is the only tie-breaker.
type candidate struct {
	idx   int
	score int
	order int
}

// rank generates candidates from every provided signal (union, not
// intersection), scores them additively, and sorts descending by score with
// stable discovery-order tie-breaking. All lookups go through one generation
// snapshot.
func (m *Matcher) rank(q Query) (*corpus.Generation, []Result, error) {
	if q.IsEmpty() {
		return nil, nil, ErrInvalidQuery
	}
	gen, err := m.engine.Snapshot()
	if err != nil {
		return nil, nil, err
	}

	cands := make(map[string]*candidate)
	var discovered []*candidate
	add := func(domain string, w int) {
		c, ok := cands[domain]
		if !ok {
			i, found := gen.IndexOf(domain)
			if !found {
				return
			}
			c = &candidate{idx: i, order: len(discovered)}
			cands[domain] = c
			discovered = append(discovered, c)
		}
		c.score += w
	}

	m.scoreName(gen, q, add)
	m.scoreWebsite(gen, q, add)
	m.scorePhone(gen, q, add)
	m.scoreFacebook(gen, q, add)

	sort.SliceStable(discovered, func(i, j int) bool {
		if discovered[i].score != discovered[j].score {
			return discovered[i].score > discovered[j].score
		}
		return discovered[i].order < discovered[j].order
	})

	results := make([]Result, len(discovered))
	for i, c := range discovered {
		rec := gen.Records[c.idx]
		results[i] = Result{
			Record:        rec,
			Score:         c.score,
			Confidence:    min(100, c.score*10),
			MatchedFields: explain(q, rec),
		}
		if q.Name != "" && rec.CommercialName != "" {
			results[i].NameSimilarity = matchr.JaroWinkler(
				strings.ToLower(q.Name), strings.ToLower(rec.CommercialName), false)
		}
	}
	return gen, results, nil
}

// scoreName handles token matches through the inverted index plus exact
// full-string name equality. A token hit that lands only in non-name fields
// still registers the record as a candidate with no score contribution.
func (m *Matcher) scoreName(gen *corpus.Generation, q Query, add func(string, int)) {
	name := strings.TrimSpace(q.Name)
	if name == "" {
		return
	}

	fieldTokens := make(map[string][3]map[string]struct{})
	lookup := func(rec corpus.CompanyRecord) [3]map[string]struct{} {
		if ft, ok := fieldTokens[rec.Domain]; ok {
			return ft
		}
		ft := [3]map[string]struct{}{
			tokenSet(rec.CommercialName),
			tokenSet(rec.LegalName),
			tokenSet(rec.AllAvailableNames),
		}
		fieldTokens[rec.Domain] = ft
		return ft
	}

	for _, tok := range normalize.Tokenize(name) {
		for _, d := range gen.DomainsForToken(tok) {
			rec, ok := gen.ByDomain(d)
			if !ok {
				continue
			}
			add(d, 0) // surfaced by the token signal regardless of field
			ft := lookup(*rec)
			if _, hit := ft[0][tok]; hit {
				add(d, m.weights.NameCommercialToken)
			}
			if _, hit := ft[1][tok]; hit {
				add(d, m.weights.NameLegalToken)
			}
			if _, hit := ft[2][tok]; hit {
				add(d, m.weights.NameAllNamesToken)
			}
		}
	}

	// Exact full-string comparison is case-insensitive and robust to legal
	// suffixes and punctuation.
	qNorm := normalize.Name(name)
	if qNorm == "" {
		return
	}
	for _, rec := range gen.Records {
		if rec.CommercialName != "" && normalize.Name(rec.CommercialName) == qNorm {
			add(rec.Domain, m.weights.NameCommercialExact)
		}
		if rec.LegalName != "" && normalize.Name(rec.LegalName) == qNorm {
			add(rec.Domain, m.weights.NameLegalExact)
		}
	}
}

// scoreWebsite handles exact domain lookup plus the substring and
// prefix-before-dot fallbacks.
func (m *Matcher) scoreWebsite(gen *corpus.Generation, q Query, add func(string, int)) {
	if strings.TrimSpace(q.Website) == "" {
		return
	}
	w := normalize.Website(q.Website)
	if w == "" {
		return // unresolvable normalization: drop this signal, keep the rest
	}

	if _, ok := gen.ByDomain(w); ok {
		add(w, m.weights.WebsiteExact)
	}

	prefix := w
	if i := strings.IndexByte(w, '.'); i >= 0 {
		prefix = w[:i]
	}

	for _, rec := range gen.Records {
		d := rec.Domain
		if strings.Contains(d, w) || strings.Contains(w, d) {
			add(d, m.weights.WebsiteSubstring)
		}
		if len(prefix) > 3 && strings.HasPrefix(d, prefix) {
			add(d, m.weights.WebsitePrefix)
		}
	}
}

// scorePhone handles exact digit-string and raw-string matches plus the
// last-7-digit suffix index. Fewer than 7 usable digits drops the signal.
func (m *Matcher) scorePhone(gen *corpus.Generation, q Query, add func(string, int)) {
	raw := strings.TrimSpace(q.Phone)
	if raw == "" {
		return
	}
	digits := normalize.Phone(raw)
	if len(digits) < 7 {
		return
	}

	for _, rec := range gen.Records {
		exact := false
		rawHit := false
		for _, p := range rec.PhoneNumbers {
			if normalize.Phone(p) == digits {
				exact = true
			}
			if p == raw {
				rawHit = true
			}
		}
		if exact {
			add(rec.Domain, m.weights.PhoneExact)
		}
		if rawHit {
			add(rec.Domain, m.weights.PhoneRaw)
		}
	}

	for _, d := range gen.DomainsForPhoneSuffix(normalize.PhoneSuffix(digits)) {
		add(d, m.weights.PhoneSuffix)
	}
}

// scoreFacebook handles handle-specific and generic facebook-link matches.
func (m *Matcher) scoreFacebook(gen *corpus.Generation, q Query, add func(string, int)) {
	if strings.TrimSpace(q.Facebook) == "" {
		return
	}
	handle := strings.ToLower(normalize.FacebookHandle(q.Facebook))

	for _, rec := range gen.Records {
		hasFacebook := false
		hasHandle := false
		for _, link := range rec.SocialMediaLinks {
			l := strings.ToLower(link)
			if !strings.Contains(l, "facebook.com") {
				continue
			}
			hasFacebook = true
			if handle != "" && strings.Contains(l, handle) {
				hasHandle = true
			}
		}
		if hasHandle {
			add(rec.Domain, m.weights.FacebookHandle)
		}
		if hasFacebook {
			add(rec.Domain, m.weights.FacebookGeneric)
		}
	}
}

// explain independently re-checks each provided query field against the
// record and reports the fields that semantically concur. This is separate
// from scoring so a reported field means agreement, not score contribution.
func explain(q Query, rec corpus.CompanyRecord) []string {
	var fields []string

	if name := strings.ToLower(strings.TrimSpace(q.Name)); name != "" {
		commercial := strings.ToLower(rec.CommercialName)
		legal := strings.ToLower(rec.LegalName)
		if containsEither(commercial, name) || (legal != "" && containsEither(legal, name)) {
			fields = append(fields, "name")
		}
	}

	if strings.TrimSpace(q.Website) != "" {
		if w := normalize.Website(q.Website); w != "" && w == rec.Domain {
			fields = append(fields, "domain")
		}
	}

	if raw := strings.TrimSpace(q.Phone); raw != "" {
		digits := normalize.Phone(raw)
		if digits != "" {
			for _, p := range rec.PhoneNumbers {
				if normalize.Phone(p) == digits {
					fields = append(fields, "phone")
					break
				}
			}
		}
	}

	if strings.TrimSpace(q.Facebook) != "" {
		if handle := strings.ToLower(normalize.FacebookHandle(q.Facebook)); handle != "" {
			for _, link := range rec.SocialMediaLinks {
				if strings.Contains(strings.ToLower(link), handle) {
					fields = append(fields, "facebook")
					break
				}
			}
		}
	}

	return fields
}

// containsEither reports whether either string contains the other.
func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func tokenSet(text string) map[string]struct{} {
	toks := normalize.Tokenize(text)
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	return set
}
