package auth

import (
	"strconv"

	"github.com/golang-jwt/jwt"

	"github.com/germplasm-hub/data-api/types"
)

// ParseToken verifies an HMAC-signed bearer token and resolves it into the
// calling user. The token carries the user id in "sub", the admin flag in
// "adm" and the display name in "name".
func ParseToken(tokenString string, secret string) (*types.UserAuth, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.NewValidationError("unexpected signing method", jwt.ValidationErrorSignatureInvalid)
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.NewValidationError("invalid token claims", jwt.ValidationErrorClaimsInvalid)
	}

	user := &types.UserAuth{}

	if id, ok := subjectID(claims["sub"]); ok {
		user.ID = &id
	}
	if admin, ok := claims["adm"].(bool); ok {
		user.IsAdmin = admin
	}
	if name, ok := claims["name"].(string); ok {
		user.Username = name
	}

	return user, nil
}

// subjectID accepts the numeric and string encodings of the subject claim.
func subjectID(claim interface{}) (int64, bool) {
	switch v := claim.(type) {
	case float64:
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}
