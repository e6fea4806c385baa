package handler

import "github.com/labstack/echo/v4"

// apiResponse is the envelope every endpoint returns, success or failure.
// Success is derived from the status code so clients can branch on one field.
type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func respond(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, apiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < 400,
	})
}
