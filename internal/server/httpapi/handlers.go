package httpapi

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/a2hand/internal/common"
	"github.com/dmitrijs2005/a2hand/internal/server/models"
	"github.com/dmitrijs2005/a2hand/internal/server/services"
	"github.com/gorilla/mux"
)

// multipart parts above this size spill to temporary files
const multipartMemory = 8 << 20

// formBodyLimit caps bodies of non-upload endpoints.
const formBodyLimit = 64 << 10

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
}

type meResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type productCreatedResponse struct {
	ProductID int64 `json:"product_id"`
}

type messageSentResponse struct {
	MessageID int64 `json:"message_id"`
}

func (s *HTTPServer) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, formBodyLimit)
	return r.ParseForm()
}

// parseMultipart accepts multipart and urlencoded bodies alike.
func (s *HTTPServer) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	if s.opts.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)
	}
	err := r.ParseMultipartForm(multipartMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

// openUploads opens the non-empty files of field. The returned closer must
// always be called.
func openUploads(r *http.Request, field string) ([]services.Upload, func(), error) {
	var (
		uploads []services.Upload
		opened  []multipart.File
	)
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	if r.MultipartForm == nil {
		return nil, closeAll, nil
	}

	for _, fh := range r.MultipartForm.File[field] {
		if fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, err
		}
		opened = append(opened, f)
		uploads = append(uploads, services.Upload{Name: fh.Filename, Content: f})
	}
	return uploads, closeAll, nil
}

func pathID(r *http.Request, what string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, common.Validationf("invalid %s id", what)
	}
	return id, nil
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.parseForm(w, r); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	_, err := s.users.Register(ctx, r.PostForm.Get("username"), r.PostForm.Get("email"), r.PostForm.Get("password"))
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	writeMessage(w, http.StatusOK, true, "User registered successfully")
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.parseForm(w, r); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	session, err := s.users.Login(ctx, r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: session.AccessToken,
		TokenType:   "bearer",
		Username:    session.Username,
	})
}

func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := bearerToken(r)
	if token == "" {
		token = strings.TrimSpace(r.URL.Query().Get(common.TokenQueryParam))
	}
	if token == "" {
		s.writeError(ctx, w, common.ErrorUnauthorized)
		return
	}

	user, err := s.users.Me(ctx, token)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{Username: user.Username, Email: user.Email})
}

func (s *HTTPServer) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.parseMultipart(w, r); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	images, closeAll, err := openUploads(r, "images")
	defer closeAll()
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	seller, err := s.actor(r, r.FormValue("seller"))
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("price")), 64)
	if err != nil {
		s.writeError(ctx, w, common.Validationf("invalid price"))
		return
	}

	product, err := s.products.Create(ctx, services.NewProduct{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Price:       price,
		Currency:    r.FormValue("currency"),
		Category:    r.FormValue("category"),
		Location:    r.FormValue("location"),
		Seller:      seller,
	}, images)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, productCreatedResponse{ProductID: product.ID})
}

func (s *HTTPServer) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	list, err := s.products.List(ctx, models.ProductFilter{
		Category: q.Get("category"),
		Location: q.Get("location"),
		Search:   q.Get("search"),
	})
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	if list == nil {
		list = []models.Product{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "product")
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	product, err := s.products.Get(ctx, id)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *HTTPServer) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "product")
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	seller, err := s.actor(r, r.URL.Query().Get("seller"))
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	if err := s.products.Delete(ctx, id, seller); err != nil {
		s.writeError(ctx, w, err)
		return
	}
	writeMessage(w, http.StatusOK, true, "Product deleted successfully")
}

func (s *HTTPServer) sendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.parseMultipart(w, r); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	files, closeAll, err := openUploads(r, "file")
	defer closeAll()
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	sender, err := s.actor(r, r.FormValue("sender"))
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	productID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("product_id")), 10, 64)
	if err != nil {
		s.writeError(ctx, w, common.Validationf("invalid product_id"))
		return
	}

	var attachment *services.Upload
	switch len(files) {
	case 0:
	case 1:
		attachment = &files[0]
	default:
		s.writeError(ctx, w, common.Validationf("only one attachment per message is allowed"))
		return
	}

	msg, err := s.messages.Send(ctx, services.NewMessage{
		Sender:    sender,
		Receiver:  r.FormValue("receiver"),
		ProductID: productID,
		Body:      r.FormValue("message"),
	}, attachment)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageSentResponse{MessageID: msg.ID})
}

func (s *HTTPServer) listMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username, err := s.actor(r, r.URL.Query().Get("username"))
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	if username == "" {
		s.writeError(ctx, w, common.Validationf("username is required"))
		return
	}

	list, err := s.messages.List(ctx, username)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	if list == nil {
		list = []models.Message{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) markRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "message")
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	// Empty receiver marks unconditionally (legacy mode only).
	receiver, err := s.actor(r, "")
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	if err := s.messages.MarkRead(ctx, id, receiver); err != nil {
		s.writeError(ctx, w, err)
		return
	}
	writeMessage(w, http.StatusOK, true, "Message marked as read")
}
