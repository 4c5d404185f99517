package waf

import (
	"net/url"
	"sort"
	"strings"
)

// AnalysisRequest is the normalized unit judged by both filtering stages. The
// gateway submits it once per proxied request; Path may carry a query string.
type AnalysisRequest struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Protocol string `json:"protocol"`
	Body     string `json:"request_body"`
}

// Args returns the query arguments embedded in the request path. Unparseable
// query strings yield no arguments rather than an error: the raw bytes still
// reach Stage 1 via the path itself being matched upstream by the gateway.
func (r AnalysisRequest) Args() url.Values {
	idx := strings.IndexByte(r.Path, '?')
	if idx < 0 {
		return nil
	}
	vals, err := url.ParseQuery(r.Path[idx+1:])
	if err != nil {
		return nil
	}
	return vals
}

// Stage1Input builds the string tested against the rule store: the raw body,
// if non-empty, followed by every argument rendered as key=value, one term
// per value, space separated. Keys are sorted so the result is deterministic.
func (r AnalysisRequest) Stage1Input() string {
	var terms []string
	if r.Body != "" {
		terms = append(terms, r.Body)
	}

	args := r.Args()
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range args[k] {
			terms = append(terms, k+"="+v)
		}
	}

	return strings.Join(terms, " ")
}

// Stage2Payload returns the request as submitted to the decision service.
// When query arguments are present, the encoded query string replaces the
// body; otherwise the raw body is kept. This mirrors Stage 1 only partially
// on purpose: the decision service's model expects this exact shape.
func (r AnalysisRequest) Stage2Payload() AnalysisRequest {
	payload := r
	if args := r.Args(); len(args) > 0 {
		payload.Body = args.Encode()
	}
	return payload
}
