package middleware

import (
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/labstack/echo/v4"
)

// XRayMiddleware opens a trace segment per request so downstream
// store and provider calls attach their subsegments to it.
func XRayMiddleware(segmentName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, seg := xray.BeginSegment(c.Request().Context(), segmentName)
			c.SetRequest(c.Request().Clone(ctx))
			err := next(c)
			seg.Close(err)
			return err
		}
	}
}
