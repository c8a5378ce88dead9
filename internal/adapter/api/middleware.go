package api

import (
	"github.com/labstack/echo/v4"
	"net/http"
	"regexp"
)

const KeyUserID = "user_id"

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

// UserIDRequired checks the :user_id path parameter and stores it in the
// request context under KeyUserID.
func UserIDRequired() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := c.Param("user_id")
			if !userIDPattern.MatchString(userID) {
				return JsonError(c, http.StatusBadRequest, "Invalid user id")
			}
			c.Set(KeyUserID, userID)
			if err := next(c); err != nil {
				c.Error(err)
			}
			return nil
		}
	}
}
