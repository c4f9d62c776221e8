package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"keyword-history/internal/bootstrap"
	"keyword-history/internal/shared/config"
	"keyword-history/internal/shared/telemetry"
)

var (
	initMu    sync.Mutex
	ginLambda *ginadapter.GinLambdaV2
)

// proxy builds the app on first use. A failed build is retried on the next
// invocation instead of poisoning the execution environment.
func proxy(ctx context.Context) (*ginadapter.GinLambdaV2, error) {
	initMu.Lock()
	defer initMu.Unlock()
	if ginLambda != nil {
		return ginLambda, nil
	}
	cfg := config.Load()
	telemetry.Init(cfg.LogLevel)
	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ginLambda = ginadapter.NewV2(app.Router)
	return ginLambda, nil
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	p, err := proxy(ctx)
	if err != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": err.Error()})
		body, _ := json.Marshal(map[string]string{"error": "bootstrap failed"})
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       string(body),
			Headers:    map[string]string{"Content-Type": "application/json"},
		}, nil
	}
	return p.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(handler)
}
