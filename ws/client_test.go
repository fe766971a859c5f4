package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	amdago "github.com/amdalab/amdago"
)

const treeXML = `<?xml version="1.0"?>
<dataRoot>
  <dataCenter xml:id="AMDA" name="AMDA">
    <mission xml:id="ACE" name="ACE">
      <instrument xml:id="ACE_swepam" name="SWEPAM">
        <dataset xml:id="ace-swe-all" name="solar wind" dataStart="1998-02-04T00:00:00Z" dataStop="2020-12-31T23:59:59Z"/>
      </instrument>
    </mission>
  </dataCenter>
</dataRoot>
`

func testService(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/isAlive.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"alive":true}`))
	})
	mux.HandleFunc("/auth.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("token-123\n"))
	})
	mux.HandleFunc("/getObsDataTree.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<LocalDataBaseParameters>" + server.URL + "/tree.xml</LocalDataBaseParameters>"))
	})
	mux.HandleFunc("/tree.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(treeXML))
	})
	mux.HandleFunc("/getDataset.php", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "token-123" {
			w.Write([]byte(`{"success":false}`))
			return
		}
		assert.Equal(t, "ace-swe-all", r.URL.Query().Get("datasetID"))
		assert.Equal(t, "ASCII", r.URL.Query().Get("outputFormat"))
		w.Write([]byte(`{"success":true,"dataFileURLs":"` + server.URL + `/data.txt"}`))
	})
	mux.HandleFunc("/data.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("2020-01-01T00:00:00.000 1.0\n"))
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func TestIsAlive(t *testing.T) {
	server := testService(t)
	client := NewClient(server.URL)

	alive, err := client.IsAlive(context.Background())
	assert.NoError(t, err)
	assert.True(t, alive)
}

func TestAuth(t *testing.T) {
	server := testService(t)
	client := NewClient(server.URL)

	token, err := client.Auth(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "token-123", token)
}

func TestGetObsDataTree(t *testing.T) {
	server := testService(t)
	client := NewClient(server.URL)

	tree, err := client.GetObsDataTree(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, len(tree.Missions))
	assert.Equal(t, 1, tree.DatasetCount())
}

func TestGetDataset(t *testing.T) {
	server := testService(t)
	client := NewClient(server.URL)
	ctx := context.Background()

	token, err := client.Auth(ctx)
	assert.NoError(t, err)

	fileURL, err := client.GetDataset(ctx, DatasetRequest{
		Token:     token,
		DatasetID: "ace-swe-all",
		Start:     time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Stop:      time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, err)

	text, err := client.FetchText(ctx, fileURL)
	assert.NoError(t, err)
	assert.Equal(t, "2020-01-01T00:00:00.000 1.0\n", text)
}

func TestGetDatasetFailure(t *testing.T) {
	server := testService(t)
	client := NewClient(server.URL)

	_, err := client.GetDataset(context.Background(), DatasetRequest{
		Token:     "wrong",
		DatasetID: "ace-swe-all",
		Start:     time.Now(),
		Stop:      time.Now(),
	})
	assert.IsError(t, err, amdago.ErrEmptyResult)
}

func TestHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL)

	_, err := client.IsAlive(context.Background())
	assert.IsError(t, err, amdago.ErrRequestFailed)
}
