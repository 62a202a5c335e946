package framework

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"
)

// ServiceInfo is the status document returned by the service under test from the
// initial status query.
type ServiceInfo struct {
	Versions           []ComponentVersion `json:"versions"`
	DatabaseConnection struct {
		Connected bool `json:"connected"`
	} `json:"database_connection"`
}

type ComponentVersion struct {
	Component string `json:"component"`
	Version   string `json:"version"`
}

// TestHarness verifies that the service under test is responding by querying its
// status resource, and holds the resulting service description for the duration of
// the test run.
type TestHarness struct {
	serviceBaseURL string
	serviceInfo    ServiceInfo
	logger         Logger
}

// NewTestHarness polls the service's status resource until it responds or the timeout
// elapses. The statusPath is resolved relative to serviceBaseURL.
func NewTestHarness(
	serviceBaseURL string,
	statusPath string,
	statusQueryTimeout time.Duration,
	debugLogger Logger,
	startupOutput io.Writer,
) (*TestHarness, error) {
	if debugLogger == nil {
		debugLogger = NullLogger()
	}

	h := &TestHarness{
		serviceBaseURL: strings.TrimSuffix(serviceBaseURL, "/"),
		logger:         debugLogger,
	}

	info, err := queryServiceInfo(h.serviceBaseURL+statusPath, statusQueryTimeout, startupOutput)
	if err != nil {
		return nil, err
	}
	h.serviceInfo = info
	h.logger.Printf("service status: %+v", info)

	return h, nil
}

func (h *TestHarness) BaseURL() string {
	return h.serviceBaseURL
}

func (h *TestHarness) ServiceInfo() ServiceInfo {
	return h.serviceInfo
}

// PrintServiceDescription reports the component versions the service declared in its
// status document, if it declared any.
func (h *TestHarness) PrintServiceDescription(dest io.Writer) {
	if len(h.serviceInfo.Versions) == 0 {
		return
	}
	var ss []string
	for _, v := range h.serviceInfo.Versions {
		ss = append(ss, fmt.Sprintf("%s %s", v.Component, v.Version))
	}
	fmt.Fprintf(dest, "Service components: %s\n", strings.Join(ss, ", "))
}

func queryServiceInfo(url string, timeout time.Duration, output io.Writer) (ServiceInfo, error) {
	fmt.Fprintf(output, "Connecting to service at %s", url)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		resp, err := http.DefaultClient.Get(url)
		if err == nil {
			fmt.Fprintln(output)
			if resp.StatusCode != 200 {
				return ServiceInfo{}, fmt.Errorf("status query returned HTTP %d", resp.StatusCode)
			}
			respData, err := ioutil.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return ServiceInfo{}, err
			}
			var info ServiceInfo
			if err := json.Unmarshal(respData, &info); err != nil {
				return ServiceInfo{}, fmt.Errorf("malformed status response from service: %s", string(respData))
			}
			return info, nil
		}
		if !time.Now().Before(deadline) {
			return ServiceInfo{}, fmt.Errorf("timed out, result of last query was: %w", err)
		}
		time.Sleep(time.Millisecond * 100)
	}
}
