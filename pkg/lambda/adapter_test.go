package lambda

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestFromAPIGateway(t *testing.T) {
	event := events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodPatch,
		Path:           "/todos/T1",
		Headers:        map[string]string{"authorization": "Bearer token"},
		PathParameters: map[string]string{"todoId": "T1"},
		Body:           `{"name":"x"}`,
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID:  "req-1",
			Authorizer: map[string]interface{}{"principalId": "U1"},
		},
	}

	req, err := FromAPIGateway(event)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "T1", req.PathParams["todoId"])
	assert.Equal(t, `{"name":"x"}`, string(req.Body))
	assert.Equal(t, "U1", req.Authorizer["principalId"])
	assert.Equal(t, "req-1", req.RequestID)
	assert.Equal(t, "Bearer token", req.Header("Authorization"))
	assert.Empty(t, req.Header("X-Missing"))
}

func TestFromAPIGatewayBase64Body(t *testing.T) {
	event := events.APIGatewayProxyRequest{
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"name":"x"}`)),
		IsBase64Encoded: true,
	}

	req, err := FromAPIGateway(event)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"x"}`, string(req.Body))

	_, err = FromAPIGateway(events.APIGatewayProxyRequest{Body: "%%%", IsBase64Encoded: true})
	assert.Error(t, err)
}

func TestToAPIGatewaySetsCORSHeader(t *testing.T) {
	resp := ToAPIGateway(&Response{StatusCode: http.StatusCreated, Body: []byte(`{}`)})

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, `{}`, resp.Body)
}

func TestJSON(t *testing.T) {
	resp, err := JSON(http.StatusOK, map[string]string{"message": "todo updated"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"todo updated"}`, string(resp.Body))

	_, err = JSON(http.StatusOK, make(chan int))
	assert.Error(t, err)
}

func TestAdapt(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := Adapt(func(ctx context.Context, req *Request) (*Response, error) {
			return JSON(http.StatusOK, map[string]string{"path": req.Path})
		}, quietLogger())

		resp, err := h(context.Background(), events.APIGatewayProxyRequest{Path: "/todos"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"path":"/todos"}`, resp.Body)
		assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	})

	t.Run("handler error becomes 500", func(t *testing.T) {
		h := Adapt(func(ctx context.Context, req *Request) (*Response, error) {
			return nil, errors.New("boom")
		}, quietLogger())

		resp, err := h(context.Background(), events.APIGatewayProxyRequest{})
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.NotContains(t, resp.Body, "boom")
		assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	})

	t.Run("malformed body becomes 400", func(t *testing.T) {
		called := false
		h := Adapt(func(ctx context.Context, req *Request) (*Response, error) {
			called = true
			return nil, nil
		}, quietLogger())

		resp, err := h(context.Background(), events.APIGatewayProxyRequest{Body: "%%%", IsBase64Encoded: true})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.False(t, called)
	})
}
