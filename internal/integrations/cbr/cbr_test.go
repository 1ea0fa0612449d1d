package cbr

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const keyRateResponse = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body>
    <KeyRateResponse xmlns="http://web.cbr.ru/">
      <KeyRateResult>
        <diffgram>
          <KeyRate xmlns="">
            <KR><DT>2024-06-07T00:00:00+03:00</DT><Rate>16.00</Rate></KR>
            <KR><DT>2024-06-10T00:00:00+03:00</DT><Rate>16.50</Rate></KR>
            <KR><DT>2024-06-03T00:00:00+03:00</DT><Rate>15.00</Rate></KR>
          </KeyRate>
        </diffgram>
      </KeyRateResult>
    </KeyRateResponse>
  </soap:Body>
</soap:Envelope>`

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestParseXMLResponse(t *testing.T) {
	rate, err := parseXMLResponse([]byte(keyRateResponse))
	require.NoError(t, err)
	assert.Equal(t, 16.5, rate)

	rate, err = parseXMLResponse([]byte(`<r><diffgram><KeyRate><KR><Rate>21</Rate></KR></KeyRate></diffgram></r>`))
	require.NoError(t, err)
	assert.Equal(t, 21.0, rate)

	_, err = parseXMLResponse([]byte(`<r><diffgram/></r>`))
	assert.Error(t, err)
	_, err = parseXMLResponse([]byte(`<r><diffgram><KeyRate><KR><Rate>n/a</Rate></KR></KeyRate></diffgram></r>`))
	assert.Error(t, err)
	_, err = parseXMLResponse([]byte(`not xml <`))
	assert.Error(t, err)
}

func TestGetKeyRate(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "http://web.cbr.ru/KeyRate", r.Header.Get("SOAPAction"))
		body, _ := io.ReadAll(r.Body)
		assert.True(t, strings.Contains(string(body), "<ToDate>2024-06-10</ToDate>"))
		_, _ = w.Write([]byte(keyRateResponse))
	}))
	defer srv.Close()

	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	c := NewCBRClient(srv.URL, quietLogger(), time.Hour)
	c.now = func() time.Time { return now }

	rate, err := c.GetKeyRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 16.5, rate)

	now = now.Add(30 * time.Minute)
	_, err = c.GetKeyRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	now = now.Add(time.Hour)
	_, err = c.GetKeyRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGetKeyRateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewCBRClient(srv.URL, quietLogger(), time.Hour)
	_, err := c.GetKeyRate(context.Background())
	assert.ErrorContains(t, err, "unexpected status code: 502")
}
