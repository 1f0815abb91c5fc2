package http

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/google/uuid"

	"quizdeck/internal/identity"
)

// handoffUser is the payload the popup hands back to the opening window.
type handoffUser struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	Avatar string    `json:"avatar"`
}

// handoffPage is rendered by the OAuth callback when login happens in a
// popup. It posts the signed-in user to window.opener and closes itself;
// the session cookie set alongside it covers non-popup flows.
var handoffPage = template.Must(template.New("handoff").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Signing you in…</title>
<style>
body { font-family: system-ui, sans-serif; display: flex; flex-direction: column; align-items: center; justify-content: center; min-height: 90vh; color: #333; }
button { margin-top: 1rem; padding: 0.5rem 1.25rem; font-size: 1rem; cursor: pointer; }
</style>
</head>
<body>
<p>You are signed in. This window will close automatically.</p>
<button onclick="window.close()">Close window</button>
<script>
(function () {
  var user = {{.UserJSON}};
  var targetOrigin = {{.TargetOrigin}};
  if (window.opener) {
    window.opener.postMessage({ type: "oauth", user: user }, targetOrigin);
  }
  setTimeout(function () { window.close(); }, 2000);
})();
</script>
</body>
</html>
`))

type handoffData struct {
	UserJSON     template.JS
	TargetOrigin string
}

// renderHandoff writes the popup hand-back page for the given identity.
// The target origin restricts who may receive the postMessage; "*" is the
// fallback when no frontend origin is configured.
func renderHandoff(w io.Writer, ident *identity.Identity, targetOrigin string) error {
	if targetOrigin == "" {
		targetOrigin = "*"
	}

	userJSON, err := json.Marshal(handoffUser{
		ID:     ident.ID,
		Name:   ident.Name,
		Email:  ident.Email,
		Role:   string(ident.Role),
		Avatar: ident.AvatarURL,
	})
	if err != nil {
		return fmt.Errorf("marshal handoff payload: %w", err)
	}

	return handoffPage.Execute(w, handoffData{
		UserJSON:     template.JS(userJSON),
		TargetOrigin: targetOrigin,
	})
}
