package i18n

var catalog = map[string]map[string]string{
	LocaleDE: {
		"error.bad_request":              "Ungültige Anfrage",
		"error.validation_failed":        "Ungültige Eingabe",
		"error.invalid_argument":         "Ungültige Parameterkombination",
		"error.invalid_key":              "Ungültiger Schlüssel",
		"error.not_found":                "Nicht gefunden",
		"error.article_not_found":        "Artikel nicht gefunden",
		"error.cart_not_found":           "Warenkorb nicht gefunden",
		"error.discount_not_found":       "Rabatt nicht gefunden",
		"error.discount_code_invalid":    "Kein gültiger Rabattcode gefunden",
		"error.code_conflict":            "Rabattcode wird bereits verwendet",
		"error.invalid_state":            "Ungültiger Zustand",
		"error.not_implemented":          "Nicht unterstützt",
		"error.internal":                 "Interner Fehler",
		"error.unauthorized":             "Nicht angemeldet",
		"error.forbidden":                "Keine Berechtigung",
		"error.login_failed":             "Benutzername oder Passwort falsch",
		"error.token_invalid":            "Token ungültig",
		"error.token_revoked":            "Token wurde widerrufen",
		"error.auth_header_missing":      "Authorization-Header fehlt",
		"error.auth_header_invalid":      "Authorization-Header ungültig",
		"error.jwt_secret_missing":       "JWT-Secret nicht konfiguriert",
		"error.user_disabled":            "Konto deaktiviert",
		"error.rate_limited":             "Zu viele Anfragen, bitte in %d Sekunden erneut versuchen",
		"error.rate_limit_unavailable":   "Ratenbegrenzung nicht verfügbar",
		"error.queue_unavailable":        "Warteschlange nicht verfügbar",
		"error.password_min_length":      "Das Passwort muss mindestens %d Zeichen lang sein",
		"error.password_require_upper":   "Das Passwort muss einen Großbuchstaben enthalten",
		"error.password_require_lower":   "Das Passwort muss einen Kleinbuchstaben enthalten",
		"error.password_require_number":  "Das Passwort muss eine Ziffer enthalten",
		"error.password_require_special": "Das Passwort muss ein Sonderzeichen enthalten",
	},
	LocaleEN: {
		"error.bad_request":              "Bad request",
		"error.validation_failed":        "Validation failed",
		"error.invalid_argument":         "Invalid combination of parameters",
		"error.invalid_key":              "Invalid key",
		"error.not_found":                "Not found",
		"error.article_not_found":        "Article not found",
		"error.cart_not_found":           "Cart not found",
		"error.discount_not_found":       "Discount not found",
		"error.discount_code_invalid":    "No valid code found",
		"error.code_conflict":            "Discount code already in use",
		"error.invalid_state":            "Invalid state",
		"error.not_implemented":          "Not implemented",
		"error.internal":                 "Internal error",
		"error.unauthorized":             "Unauthorized",
		"error.forbidden":                "Forbidden",
		"error.login_failed":             "Invalid username or password",
		"error.token_invalid":            "Invalid token",
		"error.token_revoked":            "Token revoked",
		"error.auth_header_missing":      "Authorization header missing",
		"error.auth_header_invalid":      "Invalid authorization header",
		"error.jwt_secret_missing":       "JWT secret not configured",
		"error.user_disabled":            "Account disabled",
		"error.rate_limited":             "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":   "Rate limiting unavailable",
		"error.queue_unavailable":        "Queue unavailable",
		"error.password_min_length":      "Password must be at least %d characters long",
		"error.password_require_upper":   "Password must contain an uppercase letter",
		"error.password_require_lower":   "Password must contain a lowercase letter",
		"error.password_require_number":  "Password must contain a digit",
		"error.password_require_special": "Password must contain a special character",
	},
}
