package server

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/mindtree/pkg/editor"
	mterrors "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/format"
	"github.com/matzehuels/mindtree/pkg/geometry"
	"github.com/matzehuels/mindtree/pkg/mind"
	"github.com/matzehuels/mindtree/pkg/pipeline"
)

// ===== Request and response bodies =====

type nodeView struct {
	ID           string         `json:"id"`
	ParentID     string         `json:"parent_id,omitempty"`
	Topic        string         `json:"topic"`
	SelectedType string         `json:"selected_type,omitempty"`
	Direction    string         `json:"direction"`
	Level        int            `json:"level"`
	Expanded     bool           `json:"expanded"`
	Children     int            `json:"children"`
	Data         map[string]any `json:"data,omitempty"`
}

func viewOf(n *mind.Node) nodeView {
	v := nodeView{
		ID:           n.ID(),
		Topic:        n.Topic,
		SelectedType: n.SelectedType,
		Direction:    n.Direction().String(),
		Level:        n.Level(),
		Expanded:     n.Expanded,
		Children:     len(n.Children()),
		Data:         n.Data,
	}
	if p := n.Parent(); p != nil {
		v.ParentID = p.ID()
	}
	return v
}

type addNodeRequest struct {
	ParentID  string         `json:"parent_id"`
	BeforeID  string         `json:"before_id"`
	AfterID   string         `json:"after_id"`
	ID        string         `json:"id"`
	Topic     string         `json:"topic"`
	Data      map[string]any `json:"data"`
	Direction string         `json:"direction"`
}

type updateNodeRequest struct {
	Topic           *string `json:"topic"`
	SelectedType    *string `json:"selected_type"`
	BackgroundColor *string `json:"background_color"`
	ForegroundColor *string `json:"foreground_color"`
}

type moveNodeRequest struct {
	ParentID  string `json:"parent_id"`
	BeforeID  string `json:"before_id"`
	Direction string `json:"direction"`
}

type toggleNodeRequest struct {
	Expanded *bool `json:"expanded"`
}

// ===== Service =====

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.opts.Metrics == nil {
		http.NotFound(w, r)
		return
	}
	s.opts.Metrics.ServeHTTP(w, r)
}

// ===== Maps =====

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"maps": ids})
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	id, err := mapID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var body []byte
	if name := r.URL.Query().Get("format"); name != "" {
		f, perr := format.ParseFormat(name)
		if perr != nil {
			s.writeError(w, r, perr)
			return
		}
		m, derr := format.FromDocument(doc)
		if derr != nil {
			s.writeError(w, r, derr)
			return
		}
		body, err = format.Encode(m, f)
		w.Header().Set("Content-Type", pipeline.ContentType(string(f)))
	} else {
		body, err = format.MarshalDocument(doc)
		w.Header().Set("Content-Type", "application/json")
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	_, _ = w.Write(body)
}

func (s *Server) handlePutMap(w http.ResponseWriter, r *http.Request) {
	id, err := mapID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, mterrors.Wrap(mterrors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	f, err := format.Detect(data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := format.Decode(data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := format.ToDocument(m, f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Put(r.Context(), id, doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.forget(id)
	s.logger.Info("stored map", "id", id, "format", f, "nodes", m.Len())
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "format": f, "nodes": m.Len()})
}

func (s *Server) handleDeleteMap(w http.ResponseWriter, r *http.Request) {
	id, err := mapID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.forget(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	id, err := mapID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body []byte
	err = s.view(r.Context(), id, func(ed *editor.Editor) error {
		var merr error
		body, merr = geometry.Marshal(geometry.FromLayout(ed.Mind(), ed.Engine()))
		return merr
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (s *Server) handleRenderSVG(w http.ResponseWriter, r *http.Request) {
	id, err := mapID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var artifacts map[string][]byte
	err = s.view(r.Context(), id, func(ed *editor.Editor) error {
		var rerr error
		artifacts, rerr = s.runner.Render(r.Context(), ed.Mind(), ed.Engine(), pipeline.Options{
			Layout:  ed.Engine().Options(),
			Formats: []string{pipeline.FormatSVG},
		})
		return rerr
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentType(pipeline.FormatSVG))
	_, _ = w.Write(artifacts[pipeline.FormatSVG])
}

// ===== Nodes =====

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	id, err := mapID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req addNodeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var added nodeView
	_, err = s.edit(r.Context(), id, func(ed *editor.Editor) error {
		var (
			n    *mind.Node
			aerr error
		)
		switch {
		case req.BeforeID != "":
			n, aerr = ed.InsertNodeBefore(req.BeforeID, req.ID, req.Topic, req.Data)
		case req.AfterID != "":
			n, aerr = ed.InsertNodeAfter(req.AfterID, req.ID, req.Topic, req.Data)
		case req.ParentID != "":
			n, aerr = ed.AddNode(req.ParentID, req.ID, req.Topic, req.Data, mind.ParseDirection(req.Direction))
		default:
			aerr = mterrors.New(mterrors.ErrCodeInvalidInput, "one of parent_id, before_id or after_id is required")
		}
		if aerr != nil {
			return aerr
		}
		added = viewOf(n)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	id, nodeID, err := nodeIDs(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req updateNodeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var updated nodeView
	_, err = s.edit(r.Context(), id, func(ed *editor.Editor) error {
		n, nerr := ed.Mind().Node(nodeID)
		if nerr != nil {
			return nerr
		}
		if req.Topic != nil || req.SelectedType != nil {
			topic, selected := n.Topic, n.SelectedType
			if req.Topic != nil {
				topic = *req.Topic
			}
			if req.SelectedType != nil {
				selected = *req.SelectedType
			}
			if uerr := ed.UpdateNode(nodeID, topic, selected); uerr != nil {
				return uerr
			}
		}
		if req.BackgroundColor != nil || req.ForegroundColor != nil {
			var bg, fg string
			if req.BackgroundColor != nil {
				bg = *req.BackgroundColor
			}
			if req.ForegroundColor != nil {
				fg = *req.ForegroundColor
			}
			if cerr := ed.SetNodeColor(nodeID, bg, fg); cerr != nil {
				return cerr
			}
		}
		updated = viewOf(n)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	id, nodeID, err := nodeIDs(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	_, err = s.edit(r.Context(), id, func(ed *editor.Editor) error {
		return ed.RemoveNode(nodeID)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMoveNode(w http.ResponseWriter, r *http.Request) {
	id, nodeID, err := nodeIDs(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req moveNodeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var moved nodeView
	_, err = s.edit(r.Context(), id, func(ed *editor.Editor) error {
		if merr := ed.MoveNode(nodeID, req.BeforeID, req.ParentID, mind.ParseDirection(req.Direction)); merr != nil {
			return merr
		}
		n, nerr := ed.Mind().Node(nodeID)
		if nerr != nil {
			return nerr
		}
		moved = viewOf(n)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, moved)
}

func (s *Server) handleToggleNode(w http.ResponseWriter, r *http.Request) {
	id, nodeID, err := nodeIDs(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req toggleNodeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var toggled nodeView
	_, err = s.edit(r.Context(), id, func(ed *editor.Editor) error {
		var terr error
		switch {
		case req.Expanded == nil:
			terr = ed.Toggle(nodeID)
		case *req.Expanded:
			terr = ed.Expand(nodeID)
		default:
			terr = ed.Collapse(nodeID)
		}
		if terr != nil {
			return terr
		}
		n, nerr := ed.Mind().Node(nodeID)
		if nerr != nil {
			return nerr
		}
		toggled = viewOf(n)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toggled)
}

// ===== Helpers =====

func mapID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if err := mterrors.ValidateMapID(id); err != nil {
		return "", err
	}
	return id, nil
}

func nodeIDs(r *http.Request) (string, string, error) {
	id, err := mapID(r)
	if err != nil {
		return "", "", err
	}
	nodeID := chi.URLParam(r, "nodeID")
	if err := mterrors.ValidateNodeID(nodeID); err != nil {
		return "", "", err
	}
	return id, nodeID, nil
}
