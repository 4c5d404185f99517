package waf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalysisRequest_Args(t *testing.T) {
	req := AnalysisRequest{Path: "/api/users?page=1&limit=10"}
	args := req.Args()
	assert.Equal(t, "1", args.Get("page"))
	assert.Equal(t, "10", args.Get("limit"))

	assert.Nil(t, AnalysisRequest{Path: "/api/users"}.Args())
}

func TestAnalysisRequest_Stage1Input_BodyAndArgs(t *testing.T) {
	req := AnalysisRequest{
		Path: "/search?q=hello&tag=a&tag=b",
		Body: "payload",
	}
	assert.Equal(t, "payload q=hello tag=a tag=b", req.Stage1Input())
}

func TestAnalysisRequest_Stage1Input_EmptyBody(t *testing.T) {
	req := AnalysisRequest{Path: "/search?q=hello"}
	assert.Equal(t, "q=hello", req.Stage1Input())
}

func TestAnalysisRequest_Stage1Input_BodyOnly(t *testing.T) {
	req := AnalysisRequest{Path: "/admin", Body: `'; DROP TABLE users; --`}
	assert.Equal(t, `'; DROP TABLE users; --`, req.Stage1Input())
}

func TestAnalysisRequest_Stage2Payload_ArgsReplaceBody(t *testing.T) {
	req := AnalysisRequest{Path: "/search?q=hello", Body: "original"}
	payload := req.Stage2Payload()
	assert.Equal(t, "q=hello", payload.Body)
	// The original request is untouched.
	assert.Equal(t, "original", req.Body)
}

func TestAnalysisRequest_Stage2Payload_NoArgsKeepsBody(t *testing.T) {
	req := AnalysisRequest{Path: "/admin", Body: "original"}
	assert.Equal(t, "original", req.Stage2Payload().Body)
}
