package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// formView is the data behind the index template
type formView struct {
	Statement string
	Result    string
	Warnings  []string
	Error     string
	Remaining int64 // -1 when unlimited
	MaxLength int
	Engine    string
}

func (s *Server) newView(c *gin.Context) *formView {
	view := &formView{
		Remaining: -1,
		MaxLength: s.config.MaxStatementLength,
		Engine:    string(s.pipeline.Engine()),
	}
	a, err := s.session.Peek(c.Request.Context(), sessionID(c))
	if err != nil {
		s.logger.Warn("usage peek failed", zap.Error(err))
		return view
	}
	view.Remaining = a.Remaining
	return view
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Truth Echelon Classifier</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 44rem; margin: 2rem auto; padding: 0 1rem; }
textarea { width: 100%; min-height: 8rem; }
pre { background: #f4f4f4; padding: 1rem; white-space: pre-wrap; }
.error { color: #a00; }
.meta { color: #666; font-size: 0.9rem; }
</style>
</head>
<body>
<h1>Truth Echelon Classifier</h1>
<form method="post" action="/">
<label for="statement">Public statement</label>
<textarea id="statement" name="statement"{{if gt .MaxLength 0}} maxlength="{{.MaxLength}}"{{end}} required>{{.Statement}}</textarea>
<button type="submit">Classify</button>
</form>
{{if ge .Remaining 0}}<p class="meta">Remaining uses today: {{.Remaining}}</p>{{end}}
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Result}}<pre>{{.Result}}</pre>{{end}}
{{range .Warnings}}<p class="meta">{{.}}</p>{{end}}
<p class="meta">Engine: {{.Engine}}</p>
</body>
</html>
`
