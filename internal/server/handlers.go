package server

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/observability"
	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/render/nodelink"
	"github.com/matzehuels/treemap/pkg/render/sink"
	"github.com/matzehuels/treemap/pkg/snapshot"
	"github.com/matzehuels/treemap/pkg/source/manifest"
	"github.com/matzehuels/treemap/pkg/tree"
)

// Tree operations accepted by POST /sessions/{id}/nodes/op.
const (
	OpExpand      = "expand"
	OpExpandAll   = "expand_all"
	OpCollapse    = "collapse"
	OpCollapseAll = "collapse_all"
	OpDelete      = "delete"
	OpResize      = "resize"
	OpMove        = "move"
)

// createRequest names exactly one of Path, Stored or Manifest.
type createRequest struct {
	Path     string `json:"path,omitempty"`
	Stored   string `json:"stored,omitempty"`
	Manifest string `json:"manifest,omitempty"`
	// Format is the inline manifest encoding, "toml" (default) or "json".
	Format   string `json:"format,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Expand   *int   `json:"expand,omitempty"`
	MaxDepth int    `json:"max_depth,omitempty"`
	MaxNodes int    `json:"max_nodes,omitempty"`
	Seed     uint64 `json:"seed,omitempty"`
}

type sessionInfo struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	Location string    `json:"location"`
	Nodes    int       `json:"nodes"`
	Tiles    int       `json:"tiles"`
	Size     int64     `json:"size"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Created  time.Time `json:"created"`
}

type rectJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type nodeInfo struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Size     int64    `json:"size"`
	Depth    int      `json:"depth"`
	Leaf     bool     `json:"leaf"`
	Expanded bool     `json:"expanded"`
	Colour   string   `json:"colour"`
	Rect     rectJSON `json:"rect"`
}

type pointJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type opRequest struct {
	Op     string     `json:"op"`
	X      int        `json:"x"`
	Y      int        `json:"y"`
	Factor float64    `json:"factor,omitempty"`
	To     *pointJSON `json:"to,omitempty"`
}

type opResponse struct {
	Op      string      `json:"op"`
	Node    nodeInfo    `json:"node"`
	Session sessionInfo `json:"session"`
}

type frameRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type saveRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	loaded, err := s.load(r, req)
	if err != nil {
		writeError(w, err)
		return
	}

	opts := pipeline.Options{Width: req.Width, Height: req.Height, Expand: pipeline.DefaultExpand}
	if opts.Width == 0 {
		opts.Width = s.cfg.Width
	}
	if opts.Height == 0 {
		opts.Height = s.cfg.Height
	}
	if req.Expand != nil {
		opts.Expand = *req.Expand
	}
	if _, err := s.runner.Layout(r.Context(), loaded.Root, opts); err != nil {
		writeError(w, err)
		return
	}

	sess, err := s.sessions.add(loaded, s.now())
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("session created", "id", sess.id, "kind", loaded.Kind, "location", loaded.Location)
	observability.Server().OnSessionCount(r.Context(), s.sessions.len())
	writeJSON(w, http.StatusCreated, describe(sess))
}

// load builds the tree a create request names.
func (s *Server) load(r *http.Request, req createRequest) (*pipeline.Loaded, error) {
	set := 0
	for _, v := range []string{req.Path, req.Stored, req.Manifest} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "exactly one of path, stored or manifest is required")
	}

	opts := pipeline.Options{
		Path:     req.Path,
		Stored:   req.Stored,
		MaxDepth: req.MaxDepth,
		MaxNodes: req.MaxNodes,
		Seed:     req.Seed,
		Logger:   s.logger,
	}

	if req.Manifest != "" {
		format := manifest.FormatTOML
		switch req.Format {
		case "", string(manifest.FormatTOML):
		case string(manifest.FormatJSON):
			format = manifest.FormatJSON
		default:
			return nil, errs.New(errs.ErrCodeInvalidInput, "unsupported manifest format %q", req.Format)
		}
		if opts.MaxDepth < 0 || opts.MaxNodes < 0 {
			return nil, errs.New(errs.ErrCodeInvalidInput, "max depth and max nodes must not be negative")
		}
		if opts.Seed == 0 {
			opts.Seed = pipeline.DefaultSeed
		}
		root, err := manifest.Parse(r.Context(), []byte(req.Manifest), format, opts.SourceOptions())
		if err != nil {
			return nil, err
		}
		return &pipeline.Loaded{Root: root, Kind: "manifest", Location: "inline", Labeler: tree.PlainLabeler{}}, nil
	}

	if req.Path != "" {
		if err := s.allowPath(req.Path); err != nil {
			return nil, err
		}
	}
	return s.runner.Load(r.Context(), opts)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request, sess *session) {
	writeJSON(w, http.StatusOK, describe(sess))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.remove(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	observability.Server().OnSessionCount(r.Context(), s.sessions.len())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTiles(w http.ResponseWriter, r *http.Request, sess *session) {
	data, err := sink.RenderJSON(sess.tree.Root, sink.WithJSONLabeler(sess.tree.Labeler))
	if err != nil {
		writeError(w, err)
		return
	}
	writeBytes(w, "application/json", data)
}

func (s *Server) handleAt(w http.ResponseWriter, r *http.Request, sess *session) {
	p, err := pointParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	n, err := nodeAt(sess, p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, infoOf(n, sess.tree.Labeler))
}

func (s *Server) handleOp(w http.ResponseWriter, r *http.Request, sess *session) {
	var req opRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	n, err := s.applyOp(sess, req)
	observability.Server().OnTreeOp(r.Context(), req.Op, err)
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Debug("tree op", "id", sess.id, "op", req.Op, "node", n.Name())
	writeJSON(w, http.StatusOK, opResponse{Op: req.Op, Node: infoOf(n, sess.tree.Labeler), Session: describe(sess)})
}

// applyOp runs one mutation on the tile at (req.X, req.Y) and lays the tree
// out again in its current frame.
func (s *Server) applyOp(sess *session, req opRequest) (*tree.Node, error) {
	root := sess.tree.Root
	n, err := nodeAt(sess, tree.Point{X: req.X, Y: req.Y})
	if err != nil {
		return nil, err
	}

	switch req.Op {
	case OpExpand:
		n.Expand()
	case OpExpandAll:
		n.ExpandAll()
	case OpCollapse:
		n.Collapse()
	case OpCollapseAll:
		n.CollapseAll()
	case OpDelete:
		if !n.Delete() {
			return nil, errs.New(errs.ErrCodeInvariant, "%s cannot be deleted", n.Label(sess.tree.Labeler))
		}
	case OpResize:
		if req.Factor == 0 || math.IsNaN(req.Factor) || math.IsInf(req.Factor, 0) {
			return nil, errs.New(errs.ErrCodeInvalidInput, "resize needs a finite non-zero factor")
		}
		n.ChangeSize(req.Factor)
	case OpMove:
		if req.To == nil {
			return nil, errs.New(errs.ErrCodeInvalidInput, "move needs a destination point")
		}
		dest, err := nodeAt(sess, tree.Point{X: req.To.X, Y: req.To.Y})
		if err != nil {
			return nil, err
		}
		if err := n.Move(dest); err != nil {
			return nil, err
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, "unknown op %q", req.Op)
	}

	root.UpdateRectangles(root.Rect())
	return n, nil
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request, sess *session) {
	var req frameRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := errs.ValidateDimensions(req.Width, req.Height); err != nil {
		writeError(w, err)
		return
	}
	sess.tree.Root.UpdateRectangles(tree.Rect{W: req.Width, H: req.Height})
	writeJSON(w, http.StatusOK, describe(sess))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request, sess *session) {
	style := r.URL.Query().Get("style")
	if style == "" {
		style = pipeline.DefaultStyle
	}
	if err := pipeline.ValidateStyle(style); err != nil {
		writeError(w, err)
		return
	}
	opts := []sink.SVGOption{
		sink.WithStyle(sink.StyleByName(style)),
		sink.WithLabeler(sess.tree.Labeler),
		sink.WithInteraction(),
	}
	if text, _ := strconv.ParseBool(r.URL.Query().Get("text")); text {
		opts = append(opts, sink.WithText())
	}
	writeBytes(w, "image/svg+xml", sink.RenderSVG(sess.tree.Root, opts...))
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request, sess *session) {
	q := r.URL.Query()
	opts := nodelink.Options{}
	opts.Detailed, _ = strconv.ParseBool(q.Get("detailed"))
	if d := q.Get("depth"); d != "" {
		depth, err := strconv.Atoi(d)
		if err != nil || depth < 0 {
			writeError(w, errs.New(errs.ErrCodeInvalidInput, "invalid depth %q", d))
			return
		}
		opts.MaxDepth = depth
	}
	dot := nodelink.ToDOT(sess.tree.Root, opts)

	switch q.Get("as") {
	case "", "dot":
		writeBytes(w, "text/vnd.graphviz", []byte(dot))
	case "svg":
		data, err := nodelink.RenderSVG(r.Context(), dot)
		if err != nil {
			writeError(w, errs.Wrap(errs.ErrCodeInternal, err, "render diagram"))
			return
		}
		writeBytes(w, "image/svg+xml", data)
	default:
		writeError(w, errs.New(errs.ErrCodeInvalidInput, "unsupported diagram output %q (want dot or svg)", q.Get("as")))
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request, sess *session) {
	data, err := snapshot.MarshalJSON(sess.tree.Snapshot())
	if err != nil {
		writeError(w, err)
		return
	}
	writeBytes(w, "application/json", data)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request, sess *session) {
	if s.runner.Store == nil {
		writeError(w, errs.New(errs.ErrCodeUnsupported, "no snapshot store configured"))
		return
	}
	var req saveRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := errs.ValidateStoreKey(req.Name); err != nil {
		writeError(w, err)
		return
	}
	if err := s.runner.Store.Save(r.Context(), req.Name, sess.tree.Snapshot()); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("snapshot saved", "id", sess.id, "name", req.Name)
	writeJSON(w, http.StatusOK, map[string]string{"name": req.Name})
}

func describe(sess *session) sessionInfo {
	root := sess.tree.Root
	frame := root.Rect()
	return sessionInfo{
		ID:       sess.id.String(),
		Kind:     sess.tree.Kind,
		Location: sess.tree.Location,
		Nodes:    root.Len(),
		Tiles:    len(root.Rectangles()),
		Size:     root.Size(),
		Width:    frame.W,
		Height:   frame.H,
		Created:  sess.created,
	}
}

func infoOf(n *tree.Node, l tree.Labeler) nodeInfo {
	r := n.Rect()
	return nodeInfo{
		Name:     n.Name(),
		Label:    n.Label(l),
		Size:     n.Size(),
		Depth:    n.Depth(),
		Leaf:     n.IsLeaf(),
		Expanded: n.Expanded(),
		Colour:   n.Colour().Hex(),
		Rect:     rectJSON{X: r.X, Y: r.Y, W: r.W, H: r.H},
	}
}

func nodeAt(sess *session, p tree.Point) (*tree.Node, error) {
	n := sess.tree.Root.TreeAtPosition(p)
	if n == nil {
		return nil, errs.New(errs.ErrCodeNotFound, "no tile at (%d,%d)", p.X, p.Y)
	}
	return n, nil
}

func pointParam(r *http.Request) (tree.Point, error) {
	q := r.URL.Query()
	x, err := strconv.Atoi(q.Get("x"))
	if err != nil {
		return tree.Point{}, errs.New(errs.ErrCodeInvalidInput, "invalid x %q", q.Get("x"))
	}
	y, err := strconv.Atoi(q.Get("y"))
	if err != nil {
		return tree.Point{}, errs.New(errs.ErrCodeInvalidInput, "invalid y %q", q.Get("y"))
	}
	return tree.Point{X: x, Y: y}, nil
}
