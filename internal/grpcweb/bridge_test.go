package grpcweb

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	bookingv1 "appointment-booking-api/api/booking/v1"
)

// echoConn answers every call with the request bytes reversed, or err.
type echoConn struct {
	method string
	md     metadata.MD
	err    error
}

func (c *echoConn) Invoke(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error {
	c.method = method
	c.md, _ = metadata.FromOutgoingContext(ctx)
	if c.err != nil {
		return c.err
	}
	in := args.(*rawMsg).data
	out := make([]byte, len(in))
	for i := range in {
		out[len(in)-1-i] = in[i]
	}
	reply.(*rawMsg).data = out
	return nil
}

func (c *echoConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("streams not supported")
}

func grpcWebRequest(path string, payload []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(frame(0, payload)))
	req.Header.Set("Content-Type", "application/grpc-web+proto")
	req.Header.Set("Authorization", "Bearer tok")
	req.RemoteAddr = "198.51.100.4:5555"
	return req
}

func TestForwardSuccess(t *testing.T) {
	conn := &echoConn{}
	b := NewBridge(conn, zerolog.Nop())
	path := bookingv1.BookingService_ListAppointments_FullMethodName

	rec := httptest.NewRecorder()
	b.ServeHTTP(rec, grpcWebRequest(path, []byte{1, 2, 3}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, path, conn.method)
	assert.Equal(t, []string{"Bearer tok"}, conn.md.Get("authorization"))
	assert.Equal(t, []string{"198.51.100.4"}, conn.md.Get("x-forwarded-for"))

	body := rec.Body.Bytes()
	require.GreaterOrEqual(t, len(body), 8)
	assert.Equal(t, byte(0), body[0])
	assert.Equal(t, uint32(3), binary.BigEndian.Uint32(body[1:5]))
	assert.Equal(t, []byte{3, 2, 1}, body[5:8])
	assert.Equal(t, byte(0x80), body[8])
	assert.Contains(t, string(body[13:]), "grpc-status:0")
}

func TestForwardError(t *testing.T) {
	conn := &echoConn{err: status.Error(codes.PermissionDenied, "nope")}
	b := NewBridge(conn, zerolog.Nop())

	rec := httptest.NewRecorder()
	b.ServeHTTP(rec, grpcWebRequest(bookingv1.BookingService_CancelAppointment_FullMethodName, nil))

	body := rec.Body.Bytes()
	require.Greater(t, len(body), 5)
	assert.Equal(t, byte(0x80), body[0])
	assert.Equal(t, "grpc-status:7\r\ngrpc-message:nope\r\n", string(body[5:]))
}

func TestRejectsBadRequests(t *testing.T) {
	b := NewBridge(&echoConn{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	b.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("Content-Type", "application/json")
	b.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/x", bytes.NewReader([]byte{0, 0, 0, 0, 9, 1}))
	req.Header.Set("Content-Type", "application/grpc-web+proto")
	b.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), "incomplete frame")

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	b.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter(t *testing.T) {
	conn := &echoConn{}
	reg := prometheus.NewRegistry()
	healthy := true
	ping := func(context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("down")
	}
	r := NewRouter(NewBridge(conn, zerolog.Nop()), reg, ping)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	healthy = false
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, grpcWebRequest(bookingv1.BookingService_Login_FullMethodName, []byte{9}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, bookingv1.BookingService_Login_FullMethodName, conn.method)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
