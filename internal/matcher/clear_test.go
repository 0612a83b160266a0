package matcher

import (
	"testing"

	"github.com/imposter-project/imposter-expect/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestSelects(t *testing.T) {
	tests := []struct {
		name        string
		criteria    *model.HttpRequest
		expectation *model.HttpRequest
		want        bool
	}{
		{
			name:        "empty criteria selects everything",
			criteria:    model.Request(),
			expectation: model.Request().WithPath("/some_path1"),
			want:        true,
		},
		{
			name:        "same path",
			criteria:    model.Request().WithPath("/some_path1"),
			expectation: model.Request().WithPath("/some_path1"),
			want:        true,
		},
		{
			name:        "different path",
			criteria:    model.Request().WithPath("/some_path1"),
			expectation: model.Request().WithPath("/some_path2"),
			want:        false,
		},
		{
			name:        "criteria pattern selects literal path",
			criteria:    model.Request().WithPath("/some_path.*"),
			expectation: model.Request().WithPath("/some_path2"),
			want:        true,
		},
		{
			name:        "identical regex matchers",
			criteria:    model.Request().WithPath("/orders/\\d+"),
			expectation: model.Request().WithPath("/orders/\\d+"),
			want:        true,
		},
		{
			name:        "criteria narrower than expectation",
			criteria:    model.Request().WithPath("/some_path1").WithMethod("POST"),
			expectation: model.Request().WithPath("/some_path1"),
			want:        false,
		},
		{
			name:        "criteria broader than expectation",
			criteria:    model.Request().WithPath("/some_path1"),
			expectation: model.Request().WithPath("/some_path1").WithMethod("POST").WithHeader("X-Test", "a"),
			want:        true,
		},
		{
			name:        "body criteria",
			criteria:    model.Request().WithBody(model.Exact("hello")),
			expectation: model.Request().WithPath("/").WithBody(model.Exact("hello")),
			want:        true,
		},
		{
			name:        "parameters body concretised",
			criteria:    model.Request().WithBody(model.Params(model.NewKeyToMultiValue("a", "1"))),
			expectation: model.Request().WithBody(model.Params(model.NewKeyToMultiValue("a", "1"), model.NewKeyToMultiValue("b", "2"))),
			want:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Selects(tt.criteria, tt.expectation))
		})
	}
}

func TestConcretize(t *testing.T) {
	m := model.Request().
		WithMethod("PUT").
		WithPath("/a").
		WithQueryStringParameter("q", "1").
		WithHeader("X-Test", "v").
		WithCookie("c", "d").
		WithBody(model.Exact("body"))

	req := Concretize(m)
	assert.Equal(t, "PUT", req.Method)
	assert.Equal(t, "/a", req.Path)
	assert.Equal(t, []string{"1"}, req.Query["q"])
	assert.Equal(t, []string{"v"}, req.Headers["X-Test"])
	assert.Equal(t, []string{"d"}, req.Cookies["c"])
	assert.Equal(t, []byte("body"), req.Body)

	assert.NotNil(t, Concretize(nil))
}
