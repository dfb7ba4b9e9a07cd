package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tubegrab/extractor"
	"tubegrab/handlers"
	"tubegrab/services"
	"tubegrab/types"
	ws "tubegrab/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// TestHelper provides utilities for testing the TubeGrab server
type TestHelper struct {
	Server   *httptest.Server
	Registry services.Registry
	Hub      ws.Hub
	Router   *gin.Engine
}

// stubExtractor simulates the external extraction capability. URLs containing
// "fail" abort mid-transfer; everything else downloads in three steps.
type stubExtractor struct {
	stepDelay time.Duration
}

func (e *stubExtractor) Probe(ctx context.Context, url string) (*types.MediaInfo, error) {
	if strings.Contains(url, "unsupported") {
		return nil, &extractor.ExtractionError{URL: url, Err: errors.New("unsupported source")}
	}

	res360, res720 := "360p", "720p"
	size360, size720 := int64(4_300_000), int64(12_800_000)
	return &types.MediaInfo{
		Title:     "Test Video",
		Duration:  212,
		Thumbnail: "https://example.com/thumb.jpg",
		Formats: []types.FormatOption{
			{ID: "360p", Ext: "mp4", Resolution: &res360, Filesize: &size360},
			{ID: "720p", Ext: "mp4", Resolution: &res720, Filesize: &size720},
			{ID: "audio-only", Ext: "m4a"},
		},
	}, nil
}

func (e *stubExtractor) Download(ctx context.Context, url, formatID string, onProgress extractor.ProgressFunc) (string, error) {
	time.Sleep(e.stepDelay)
	onProgress(37, "2.1 MB/s", "00:45")
	time.Sleep(e.stepDelay)

	if strings.Contains(url, "fail") {
		onProgress(50, "1.2 MB/s", "00:30")
		return "", &extractor.DownloadError{URL: url, FormatID: formatID, Err: errors.New("network dropped mid-transfer")}
	}

	onProgress(88, "2.4 MB/s", "00:07")
	time.Sleep(e.stepDelay)
	return "video.mp4", nil
}

// NewTestHelper wires the real registry, hub, orchestrator and handlers
// around a stub extractor and serves them over httptest.
func NewTestHelper(t *testing.T) *TestHelper {
	gin.SetMode(gin.TestMode)

	hub := ws.NewHub()
	go hub.Run()

	registry := services.NewRegistry()
	orchestrator := services.NewOrchestrator(registry, hub, &stubExtractor{stepDelay: 50 * time.Millisecond}, 0)

	router := setupTestRouter(orchestrator, registry, hub)
	server := httptest.NewServer(router)

	return &TestHelper{
		Server:   server,
		Registry: registry,
		Hub:      hub,
		Router:   router,
	}
}

// Cleanup cleans up test resources
func (h *TestHelper) Cleanup(t *testing.T) {
	if h.Server != nil {
		h.Server.Close()
	}
}

// setupTestRouter mirrors the production route table
func setupTestRouter(orchestrator services.Orchestrator, registry services.Registry, hub ws.Hub) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	downloadHandler := handlers.NewDownloadHandler(orchestrator, registry, hub)
	healthHandler := handlers.NewHealthHandler()

	router.GET("/health", healthHandler.HealthCheck)

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/probe", downloadHandler.Probe)

		downloadsGroup := apiGroup.Group("/downloads")
		{
			downloadsGroup.POST("", downloadHandler.Enqueue)
			downloadsGroup.GET("", downloadHandler.GetAllJobs)
			downloadsGroup.GET("/:jobId", downloadHandler.GetJob)
		}

		wsGroup := apiGroup.Group("/ws")
		{
			wsGroup.GET("/downloads/:jobId", downloadHandler.HandleWebSocketConnection)
			wsGroup.GET("/downloads", downloadHandler.HandleWebSocketAllConnection)
		}
	}

	return router
}

// MakeRequest makes an HTTP request to the test server
func (h *TestHelper) MakeRequest(t *testing.T, method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, h.Server.URL+path, reqBody)
	require.NoError(t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	return resp
}

// GetJSON makes a GET request and unmarshals JSON response
func (h *TestHelper) GetJSON(t *testing.T, path string, target interface{}) *http.Response {
	resp := h.MakeRequest(t, "GET", path, nil)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	if target != nil {
		err = json.Unmarshal(body, target)
		require.NoError(t, err)
	}

	return resp
}

// PostJSON makes a POST request with JSON body and unmarshals JSON response
func (h *TestHelper) PostJSON(t *testing.T, path string, requestBody interface{}, target interface{}) *http.Response {
	resp := h.MakeRequest(t, "POST", path, requestBody)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	if target != nil {
		err = json.Unmarshal(body, target)
		require.NoError(t, err)
	}

	return resp
}

// WaitForTerminalJob waits for a job to reach finished or error, or fails the test
func (h *TestHelper) WaitForTerminalJob(t *testing.T, jobID string, timeout time.Duration) types.DownloadJob {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		var response struct {
			Job types.DownloadJob `json:"job"`
		}

		resp := h.GetJSON(t, "/api/downloads/"+jobID, &response)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		if response.Job.Status.Terminal() {
			return response.Job
		}

		time.Sleep(50 * time.Millisecond)
	}

	t.Fatalf("Job %s did not reach a terminal state within timeout", jobID)
	return types.DownloadJob{}
}

// ConnectWebSocket connects to a WebSocket endpoint
func (h *TestHelper) ConnectWebSocket(t *testing.T, path string) *websocket.Conn {
	wsURL := "ws" + h.Server.URL[4:] + path // Replace http:// with ws://

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	return conn
}
