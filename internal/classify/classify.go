// Package classify infers which lifecycle event a page visit or form
// submission represents. Both paths are pure functions over their inputs;
// the URL path is tried first because it is the stronger signal.
package classify

import (
	"net/url"
	"strings"

	"github.com/pwledger/server/internal/model"
)

// Pattern order matters: a pathname matching several categories resolves to
// the earlier-checked one (SIGNUP before PASS_CHANGE before LOGIN).
var (
	signupPathPatterns = []string{
		"/signup", "/sign-up", "/register", "/join",
		"/회원가입", "/가입", "/create-account", "/new-account",
	}
	passwordPathPatterns = []string{
		"/password", "/change-password", "/reset-password", "/update-password",
		"/비밀번호", "/비밀번호변경",
	}
	loginPathPatterns = []string{
		"/login", "/log-in", "/signin", "/sign-in",
		"/로그인", "/auth", "/authenticate",
	}
)

var (
	signupKeywords     = []string{"sign up", "signup", "register", "회원가입", "가입"}
	passwordKeywords   = []string{"change password", "update password", "비밀번호 변경", "password"}
	loginKeywords      = []string{"login", "log in", "sign in", "signin", "로그인"}
	emailNameFragments = []string{"email", "mail"}
	userNameFragments  = []string{"username", "user", "id"}
)

// Classify tries the URL signal first, then the form signal, and returns the
// first hit. ok is false when neither path produced a classification.
func Classify(signal model.Signal) (model.EventKind, bool) {
	if kind, ok := FromURL(signal.URL); ok {
		return kind, true
	}
	if signal.Form != nil {
		return FromForm(*signal.Form)
	}
	return "", false
}

// FromURL classifies by the lower-cased pathname of rawURL.
func FromURL(rawURL string) (model.EventKind, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	pathname := strings.ToLower(u.Path)
	if pathname == "" {
		return "", false
	}

	if containsAny(pathname, signupPathPatterns) {
		return model.EventSignup, true
	}
	if containsAny(pathname, passwordPathPatterns) {
		return model.EventPassChange, true
	}
	if containsAny(pathname, loginPathPatterns) {
		return model.EventLogin, true
	}
	return "", false
}

// FromForm classifies by the structural features of a submitted form.
// Forms without a password input carry no signal and are rejected outright.
//
// A form with two password inputs and no disambiguating keyword classifies
// as SIGNUP even though it could equally be a password-change form; the
// SIGNUP rule is checked first and both rules accept the confirm field.
func FromForm(f model.FormFeatures) (model.EventKind, bool) {
	passwordInputs := 0
	for _, t := range f.InputTypes {
		if strings.EqualFold(t, "password") {
			passwordInputs++
		}
	}
	if passwordInputs == 0 {
		return "", false
	}

	hasPasswordConfirm := passwordInputs >= 2
	hasEmail := false
	hasUsername := false
	for _, t := range f.InputTypes {
		if strings.EqualFold(t, "email") {
			hasEmail = true
		}
	}
	for _, name := range f.InputNames {
		lower := strings.ToLower(name)
		if !hasEmail && containsAnyFragment(lower, emailNameFragments) {
			hasEmail = true
		}
		if !hasUsername && containsAnyFragment(lower, userNameFragments) {
			hasUsername = true
		}
	}

	action := strings.ToLower(f.Action)
	id := strings.ToLower(f.ID)
	class := strings.ToLower(f.Class)
	buttons := strings.ToLower(f.ButtonText)

	matchesKeyword := func(keywords []string) bool {
		for _, kw := range keywords {
			if strings.Contains(buttons, kw) || strings.Contains(action, kw) ||
				strings.Contains(id, kw) || strings.Contains(class, kw) {
				return true
			}
		}
		return false
	}

	if hasPasswordConfirm || matchesKeyword(signupKeywords) {
		return model.EventSignup, true
	}
	if hasPasswordConfirm || matchesKeyword(passwordKeywords) {
		return model.EventPassChange, true
	}
	if (hasEmail || hasUsername) && matchesKeyword(loginKeywords) {
		return model.EventLogin, true
	}
	return "", false
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func containsAnyFragment(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
