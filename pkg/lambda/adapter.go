package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

// CORSOrigin is the Access-Control-Allow-Origin value set on every response
const CORSOrigin = "*"

// ProxyHandler is the signature aws-lambda-go expects for API Gateway proxy events
type ProxyHandler func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// FromAPIGateway converts an API Gateway proxy event to a generic request
func FromAPIGateway(event events.APIGatewayProxyRequest) (*Request, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded && event.Body != "" {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("decode base64 body: %w", err)
		}
		body = decoded
	}

	return &Request{
		Method:      event.HTTPMethod,
		Path:        event.Path,
		Headers:     event.Headers,
		QueryParams: event.QueryStringParameters,
		Body:        body,
		PathParams:  event.PathParameters,
		Authorizer:  event.RequestContext.Authorizer,
		RequestID:   event.RequestContext.RequestID,
	}, nil
}

// ToAPIGateway converts a generic response to an API Gateway proxy response.
// JSON content type and the CORS origin header are always present.
func ToAPIGateway(resp *Response) events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(resp.Headers)+2)
	for k, v := range resp.Headers {
		headers[k] = v
	}
	if _, ok := headers["Content-Type"]; !ok {
		headers["Content-Type"] = "application/json"
	}
	headers["Access-Control-Allow-Origin"] = CORSOrigin

	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       string(resp.Body),
	}
}

// JSON builds a JSON response with the given status code
func JSON(status int, v interface{}) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}

	return &Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}, nil
}

var internalErrorBody = []byte(`{"error":"Internal server error","message":"an unexpected error occurred"}`)

// Adapt wraps a HandlerFunc as an API Gateway proxy handler. Errors returned
// by h become a 500 response instead of a failed invocation.
func Adapt(h HandlerFunc, logger *logrus.Logger) ProxyHandler {
	if logger == nil {
		logger = logrus.New()
	}

	return func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		entry := logger.WithFields(logrus.Fields{
			"request_id": event.RequestContext.RequestID,
			"method":     event.HTTPMethod,
			"path":       event.Path,
		})

		req, err := FromAPIGateway(event)
		if err != nil {
			entry.WithError(err).Warn("Rejected malformed event")
			resp, _ := JSON(http.StatusBadRequest, map[string]string{
				"error":   "Invalid request body",
				"message": err.Error(),
			})
			return ToAPIGateway(resp), nil
		}

		resp, err := h(ctx, req)
		if err != nil {
			entry.WithError(err).Error("Handler failed")
			return ToAPIGateway(&Response{
				StatusCode: http.StatusInternalServerError,
				Body:       internalErrorBody,
			}), nil
		}

		entry.WithField("status", resp.StatusCode).Info("Request completed")
		return ToAPIGateway(resp), nil
	}
}
