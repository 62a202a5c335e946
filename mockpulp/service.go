// Package mockpulp is an in-memory stand-in for the repository-management service,
// implementing just the black-box contract that the CRUD suite asserts on. It exists
// so the harness itself can be tested without a live server.
package mockpulp

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pulp/repo-api-contract-tests/servicedef"

	uuid "github.com/satori/go.uuid"
)

const taskPath = "/pulp/api/v3/tasks/"

var repositoryWritableFields = map[string]bool{
	"name":        true,
	"description": true,
	"remote":      true,
}

// Fields the service declares but manages itself; sending them back in a PUT of a
// previously fetched representation is not an "Unexpected field" error.
var repositoryReadOnlyFields = map[string]bool{
	"pulp_href":           true,
	"pulp_created":        true,
	"versions_href":       true,
	"latest_version_href": true,
}

var remoteWritableFields = map[string]bool{
	"name":   true,
	"url":    true,
	"policy": true,
}

type repository struct {
	id            string
	name          string
	description   string
	created       time.Time
	remoteHref    string
	latestVersion int
}

type remote struct {
	id      string
	name    string
	url     string
	policy  string
	created time.Time
}

type task struct {
	id    string
	state string
}

// Service holds the fake's state. All access goes through its HTTP handler; the
// mutex is only there because httptest servers handle requests concurrently.
type Service struct {
	lock               sync.Mutex
	repos              []*repository
	remotes            []*remote
	tasks              map[string]*task
	enforceUniqueNames bool
}

// Option configures deliberate misbehavior, for tests that verify the harness
// detects a non-conforming service.
type Option func(*Service)

// WithoutUniqueNameEnforcement makes the fake accept duplicate repository names.
func WithoutUniqueNameEnforcement() Option {
	return func(s *Service) { s.enforceUniqueNames = false }
}

func New(opts ...Option) *Service {
	s := &Service{
		tasks:              make(map[string]*task),
		enforceUniqueNames: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Handler() http.Handler {
	return http.HandlerFunc(s.serveHTTP)
}

func (s *Service) serveHTTP(w http.ResponseWriter, req *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	path := req.URL.Path
	switch {
	case path == servicedef.StatusPath:
		s.serveStatus(w, req)
	case path == servicedef.RepositoryPath:
		s.serveRepositoryCollection(w, req)
	case strings.HasPrefix(path, servicedef.RepositoryPath):
		s.serveRepositoryDetail(w, req, strings.TrimPrefix(path, servicedef.RepositoryPath))
	case path == servicedef.RemotePath:
		s.serveRemoteCollection(w, req)
	case strings.HasPrefix(path, servicedef.RemotePath):
		s.serveRemoteDetail(w, req, strings.TrimPrefix(path, servicedef.RemotePath))
	case strings.HasPrefix(path, taskPath):
		s.serveTask(w, req, strings.TrimPrefix(path, taskPath))
	default:
		writeJSON(w, 404, obj{"detail": "Not found."})
	}
}

func (s *Service) serveStatus(w http.ResponseWriter, req *http.Request) {
	if req.Method != "GET" {
		w.WriteHeader(405)
		return
	}
	writeJSON(w, 200, obj{
		"versions": []obj{
			{"component": "pulpcore", "version": "3.0.0"},
			{"component": "pulp_file", "version": "0.1.0"},
		},
		"database_connection": obj{"connected": true},
	})
}

func (s *Service) serveRepositoryCollection(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case "GET":
		nameFilter := req.URL.Query().Get("name")
		var results []obj
		for _, r := range s.repos {
			if nameFilter != "" && r.name != nameFilter {
				continue
			}
			results = append(results, s.repositoryRepr(r))
		}
		writeList(w, results)
	case "POST":
		fields, ok := readBody(w, req)
		if !ok {
			return
		}
		if !s.validateRepositoryFields(w, fields, repositoryWritableFields, nil) {
			return
		}
		r := &repository{
			id:          uuid.NewV4().String(),
			name:        stringField(fields, "name"),
			description: stringField(fields, "description"),
			remoteHref:  stringField(fields, "remote"),
			created:     time.Now().UTC(),
		}
		s.repos = append(s.repos, r)
		writeJSON(w, 201, s.repositoryRepr(r))
	default:
		w.WriteHeader(405)
	}
}

func (s *Service) serveRepositoryDetail(w http.ResponseWriter, req *http.Request, rest string) {
	parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")
	r := s.findRepository(parts[0])
	if r == nil {
		writeJSON(w, 404, obj{"detail": "Not found."})
		return
	}

	if len(parts) == 2 && parts[1] == "sync" {
		if req.Method != "POST" {
			w.WriteHeader(405)
			return
		}
		s.syncRepository(w, r)
		return
	}
	if len(parts) != 1 {
		writeJSON(w, 404, obj{"detail": "Not found."})
		return
	}

	switch req.Method {
	case "GET":
		writeJSON(w, 200, project(s.repositoryRepr(r), req.URL.Query()))
	case "PUT":
		fields, ok := readBody(w, req)
		if !ok {
			return
		}
		if !s.validateRepositoryFields(w, fields, repositoryWritableFields, r) {
			return
		}
		// replace semantics: absent writable fields reset
		r.name = stringField(fields, "name")
		r.description = stringField(fields, "description")
		r.remoteHref = stringField(fields, "remote")
		writeJSON(w, 200, s.repositoryRepr(r))
	case "PATCH":
		fields, ok := readBody(w, req)
		if !ok {
			return
		}
		if !s.validatePatchFields(w, fields, r) {
			return
		}
		if _, present := fields["name"]; present {
			r.name = stringField(fields, "name")
		}
		if _, present := fields["description"]; present {
			r.description = stringField(fields, "description")
		}
		if _, present := fields["remote"]; present {
			r.remoteHref = stringField(fields, "remote")
		}
		writeJSON(w, 200, s.repositoryRepr(r))
	case "DELETE":
		for i, other := range s.repos {
			if other == r {
				s.repos = append(s.repos[:i], s.repos[i+1:]...)
				break
			}
		}
		w.WriteHeader(204)
	default:
		w.WriteHeader(405)
	}
}

func (s *Service) syncRepository(w http.ResponseWriter, r *repository) {
	if r.remoteHref == "" {
		writeJSON(w, 400, obj{
			"non_field_errors": []string{"A remote must be attached to the repository before it can sync."},
		})
		return
	}
	r.latestVersion++
	t := &task{id: uuid.NewV4().String(), state: "completed"}
	s.tasks[t.id] = t
	writeJSON(w, 202, obj{"task": taskPath + t.id + "/"})
}

func (s *Service) serveRemoteCollection(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case "GET":
		var results []obj
		for _, r := range s.remotes {
			results = append(results, remoteRepr(r))
		}
		writeList(w, results)
	case "POST":
		fields, ok := readBody(w, req)
		if !ok {
			return
		}
		if unknown := unknownFields(fields, remoteWritableFields, nil); len(unknown) > 0 {
			writeJSON(w, 400, unknown)
			return
		}
		if stringField(fields, "name") == "" {
			writeJSON(w, 400, obj{"name": []string{"This field is required."}})
			return
		}
		if stringField(fields, "url") == "" {
			writeJSON(w, 400, obj{"url": []string{"This field is required."}})
			return
		}
		r := &remote{
			id:      uuid.NewV4().String(),
			name:    stringField(fields, "name"),
			url:     stringField(fields, "url"),
			policy:  stringField(fields, "policy"),
			created: time.Now().UTC(),
		}
		if r.policy == "" {
			r.policy = "immediate"
		}
		s.remotes = append(s.remotes, r)
		writeJSON(w, 201, remoteRepr(r))
	default:
		w.WriteHeader(405)
	}
}

func (s *Service) serveRemoteDetail(w http.ResponseWriter, req *http.Request, rest string) {
	id := strings.TrimSuffix(rest, "/")
	for i, r := range s.remotes {
		if r.id == id {
			switch req.Method {
			case "GET":
				writeJSON(w, 200, remoteRepr(r))
			case "DELETE":
				s.remotes = append(s.remotes[:i], s.remotes[i+1:]...)
				w.WriteHeader(204)
			default:
				w.WriteHeader(405)
			}
			return
		}
	}
	writeJSON(w, 404, obj{"detail": "Not found."})
}

func (s *Service) serveTask(w http.ResponseWriter, req *http.Request, rest string) {
	if req.Method != "GET" {
		w.WriteHeader(405)
		return
	}
	id := strings.TrimSuffix(rest, "/")
	t := s.tasks[id]
	if t == nil {
		writeJSON(w, 404, obj{"detail": "Not found."})
		return
	}
	writeJSON(w, 200, obj{
		"pulp_href": taskPath + t.id + "/",
		"state":     t.state,
		"error":     nil,
	})
}

func (s *Service) findRepository(id string) *repository {
	for _, r := range s.repos {
		if r.id == id {
			return r
		}
	}
	return nil
}

// validateRepositoryFields applies the unknown-field, required-name, and unique-name
// checks, in that order. self is the repository being updated, or nil for a create.
func (s *Service) validateRepositoryFields(w http.ResponseWriter, fields map[string]json.RawMessage, writable map[string]bool, self *repository) bool {
	if unknown := unknownFields(fields, writable, repositoryReadOnlyFields); len(unknown) > 0 {
		writeJSON(w, 400, unknown)
		return false
	}
	name := stringField(fields, "name")
	if name == "" {
		writeJSON(w, 400, obj{"name": []string{"This field is required."}})
		return false
	}
	if s.enforceUniqueNames {
		for _, other := range s.repos {
			if other != self && other.name == name {
				writeJSON(w, 400, obj{"name": []string{"This field must be unique."}})
				return false
			}
		}
	}
	return true
}

func (s *Service) validatePatchFields(w http.ResponseWriter, fields map[string]json.RawMessage, self *repository) bool {
	if unknown := unknownFields(fields, repositoryWritableFields, repositoryReadOnlyFields); len(unknown) > 0 {
		writeJSON(w, 400, unknown)
		return false
	}
	if raw, present := fields["name"]; present {
		name := stringValue(raw)
		if name == "" {
			writeJSON(w, 400, obj{"name": []string{"This field may not be blank."}})
			return false
		}
		if s.enforceUniqueNames {
			for _, other := range s.repos {
				if other != self && other.name == name {
					writeJSON(w, 400, obj{"name": []string{"This field must be unique."}})
					return false
				}
			}
		}
	}
	return true
}

func (s *Service) repositoryRepr(r *repository) obj {
	href := servicedef.RepositoryPath + r.id + "/"
	repr := obj{
		"pulp_href":           href,
		"pulp_created":        r.created.Format(time.RFC3339Nano),
		"versions_href":       href + "versions/",
		"latest_version_href": nil,
		"name":                r.name,
		"description":         nil,
		"remote":              nil,
	}
	if r.latestVersion > 0 {
		repr["latest_version_href"] = href + "versions/" + strconv.Itoa(r.latestVersion) + "/"
	}
	if r.description != "" {
		repr["description"] = r.description
	}
	if r.remoteHref != "" {
		repr["remote"] = r.remoteHref
	}
	return repr
}

func remoteRepr(r *remote) obj {
	href := servicedef.RemotePath + r.id + "/"
	return obj{
		"pulp_href":    href,
		"pulp_created": r.created.Format(time.RFC3339Nano),
		"name":         r.name,
		"url":          r.url,
		"policy":       r.policy,
	}
}

type obj map[string]interface{}

func readBody(w http.ResponseWriter, req *http.Request) (map[string]json.RawMessage, bool) {
	data, err := ioutil.ReadAll(req.Body)
	if err != nil {
		w.WriteHeader(500)
		return nil, false
	}
	var fields map[string]json.RawMessage
	if len(data) > 0 {
		if err := json.Unmarshal(data, &fields); err != nil {
			writeJSON(w, 400, obj{"detail": "JSON parse error."})
			return nil, false
		}
	}
	return fields, true
}

func unknownFields(fields map[string]json.RawMessage, writable, readOnly map[string]bool) obj {
	unknown := obj{}
	for key := range fields {
		if writable[key] || (readOnly != nil && readOnly[key]) {
			continue
		}
		unknown[key] = []string{"Unexpected field"}
	}
	if len(unknown) == 0 {
		return nil
	}
	return unknown
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, present := fields[key]
	if !present {
		return ""
	}
	return stringValue(raw)
}

func stringValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// project applies the fields/exclude_fields selectors to a representation.
func project(repr obj, query url.Values) obj {
	if selector := query.Get("fields"); selector != "" {
		requested := map[string]bool{}
		for _, key := range strings.Split(selector, ",") {
			requested[strings.TrimSpace(key)] = true
		}
		filtered := obj{}
		for key, value := range repr {
			if requested[key] {
				filtered[key] = value
			}
		}
		return filtered
	}
	if selector := query.Get("exclude_fields"); selector != "" {
		filtered := obj{}
		for key, value := range repr {
			filtered[key] = value
		}
		for _, key := range strings.Split(selector, ",") {
			delete(filtered, strings.TrimSpace(key))
		}
		return filtered
	}
	return repr
}

func writeList(w http.ResponseWriter, results []obj) {
	if results == nil {
		results = []obj{}
	}
	writeJSON(w, 200, obj{
		"count":    len(results),
		"next":     nil,
		"previous": nil,
		"results":  results,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(500)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
