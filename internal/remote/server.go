package remote

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// Server exposes a Memory collection over the HTTP protocol consumed by
// Client. It serves as the reference remote for `skiff serve` and as the
// integration test bed for the client.
type Server struct {
	mem *Memory
}

// NewServer creates a server over the given collection.
func NewServer(mem *Memory) *Server {
	return &Server{mem: mem}
}

// Router builds the gorilla/mux router with all task collection routes.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/tasks", s.listTasks).Methods(http.MethodGet)
	router.HandleFunc("/tasks", s.createTask).Methods(http.MethodPost)
	router.HandleFunc("/tasks/{taskID}", s.getTask).Methods(http.MethodGet)
	router.HandleFunc("/tasks/{taskID}", s.updateTask).Methods(http.MethodPut)
	router.HandleFunc("/tasks/{taskID}", s.deleteTask).Methods(http.MethodDelete)
	return router
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	entries, err := s.mem.ListAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	wire := make([]wireTask, 0, len(entries))
	for _, e := range entries {
		wire = append(wire, toWire(e))
	}
	writeJSON(w, http.StatusOK, wire)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var body wireTask
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	created, err := s.mem.Create(r.Context(), fromWire(body))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toWire(created))
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	entry := s.mem.Get(mux.Vars(r)["taskID"])
	if entry == nil {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toWire(entry))
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var body wireTask
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	body.ID = mux.Vars(r)["taskID"]
	if err := s.mem.Update(r.Context(), fromWire(body)); err != nil {
		if errors.Is(err, ErrRemoteGone) {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteTask removes the task and its declared children. Deleting an
// absent task succeeds: the caller's goal state is already reached.
func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.mem.Delete(r.Context(), mux.Vars(r)["taskID"]); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
