package llm

import (
	"fmt"
	"html"
)

// FallbackHTML builds a minimal but complete landing page used when the
// model refuses or returns unusable output. The user still gets a live
// preview to iterate on.
func FallbackHTML(prompt string) string {
	escaped := html.EscapeString(prompt)
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="es">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Tu Aplicación</title>
  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      background: linear-gradient(135deg, #FF441F 0%%, #FF7043 100%%);
      min-height: 100vh;
      display: flex;
      align-items: center;
      justify-content: center;
      padding: 2rem;
    }
    .card {
      background: #fff;
      border-radius: 16px;
      box-shadow: 0 20px 60px rgba(0,0,0,0.2);
      max-width: 560px;
      padding: 3rem;
      text-align: center;
    }
    h1 { color: #1a1a1a; margin-bottom: 1rem; font-size: 1.75rem; }
    p { color: #555; line-height: 1.6; margin-bottom: 1.5rem; }
    .prompt {
      background: #f7f7f7;
      border-radius: 8px;
      color: #333;
      font-style: italic;
      padding: 1rem;
    }
  </style>
</head>
<body>
  <div class="card">
    <h1>Estamos preparando tu aplicación</h1>
    <p>Tu solicitud está lista para ser refinada. Envía un mensaje con más detalles y la actualizamos al instante.</p>
    <div class="prompt">%s</div>
  </div>
</body>
</html>
`, escaped)
}
