package utils

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type CustomContext struct {
	AppSource string
	Owner     string
}

var customContextKey = "CUSTOM_CONTEXT"

func WithCustomContext(ctx context.Context, customContext *CustomContext) context.Context {
	return context.WithValue(ctx, customContextKey, customContext)
}

func WithCustomContextFromGinRequest(c *gin.Context, appSource string) context.Context {
	customContext := &CustomContext{
		AppSource: appSource,
		Owner:     c.GetString("OwnerId"),
	}
	return WithCustomContext(c.Request.Context(), customContext)
}

func GetContext(ctx context.Context) *CustomContext {
	customContext, ok := ctx.Value(customContextKey).(*CustomContext)
	if !ok {
		return new(CustomContext)
	}
	return customContext
}

func GetAppSourceFromContext(ctx context.Context) string {
	return GetContext(ctx).AppSource
}

func GetOwnerFromContext(ctx context.Context) string {
	return GetContext(ctx).Owner
}

func SetOwnerInContext(ctx context.Context, owner string) context.Context {
	customContext := GetContext(ctx)
	customContext.Owner = owner
	return WithCustomContext(ctx, customContext)
}

func ValidateOwner(ctx context.Context) error {
	if GetOwnerFromContext(ctx) == "" {
		return errors.New("owner is missing")
	}
	return nil
}
