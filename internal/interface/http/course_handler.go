package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-course-marketplace/internal/application"
	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-course-marketplace/internal/interface/middleware"
	"github.com/oksasatya/go-course-marketplace/pkg/response"
)

type CourseHandler struct {
	Courses *application.CourseService
	Logger  *logrus.Logger
}

func NewCourseHandler(courses *application.CourseService, logger *logrus.Logger) *CourseHandler {
	return &CourseHandler{Courses: courses, Logger: logger}
}

type materialDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name" binding:"required"`
	Kind      string `json:"kind" binding:"required,material_kind"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes" binding:"gte=0"`
}

type createCourseRequest struct {
	Title         string        `json:"title" binding:"required,max=200"`
	Description   string        `json:"description"`
	Price         float64       `json:"price" binding:"gte=0"`
	Tags          []string      `json:"tags"`
	DurationLabel string        `json:"duration_label"`
	LessonCount   *int          `json:"lesson_count" binding:"omitempty,gte=0"`
	ThumbnailRef  string        `json:"thumbnail_ref"`
	Materials     []materialDTO `json:"materials" binding:"dive"`
}

// updateCourseRequest: absent fields stay untouched. Domain validation covers
// what binding cannot see through the pointers.
type updateCourseRequest struct {
	Title         *string        `json:"title" binding:"omitempty,max=200"`
	Description   *string        `json:"description"`
	Price         *float64       `json:"price" binding:"omitempty,gte=0"`
	Tags          *[]string      `json:"tags"`
	DurationLabel *string        `json:"duration_label"`
	LessonCount   *int           `json:"lesson_count" binding:"omitempty,gte=0"`
	ThumbnailRef  *string        `json:"thumbnail_ref"`
	Materials     *[]materialDTO `json:"materials" binding:"omitempty,dive"`
}

type instructorResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type courseResponse struct {
	ID                 string              `json:"id"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	Price              float64             `json:"price"`
	Tags               []string            `json:"tags"`
	DurationLabel      string              `json:"duration_label"`
	LessonCount        int                 `json:"lesson_count"`
	ThumbnailRef       string              `json:"thumbnail_ref"`
	Materials          []entity.Material   `json:"materials"`
	InstructorID       string              `json:"instructor_id"`
	Instructor         *instructorResponse `json:"instructor,omitempty"`
	EnrolledCount      int                 `json:"enrolled_count"`
	EnrolledStudentIDs []string            `json:"enrolled_student_ids,omitempty"`
	IsEnrolled         *bool               `json:"is_enrolled,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func toMaterials(in []materialDTO) []entity.Material {
	if in == nil {
		return nil
	}
	out := make([]entity.Material, len(in))
	for i, m := range in {
		out[i] = entity.Material{ID: m.ID, Name: m.Name, Kind: entity.MaterialKind(m.Kind), URL: m.URL, SizeBytes: m.SizeBytes}
	}
	return out
}

// toCourseResponse shows the roster only to the course owner; other callers
// learn the head count and whether they are on it.
func toCourseResponse(c *entity.Course, viewer *application.Principal) courseResponse {
	out := courseResponse{
		ID:            c.ID,
		Title:         c.Title,
		Description:   c.Description,
		Price:         c.Price,
		Tags:          c.Tags,
		DurationLabel: c.DurationLabel,
		LessonCount:   c.LessonCount,
		ThumbnailRef:  c.ThumbnailRef,
		Materials:     c.Materials,
		InstructorID:  c.InstructorID,
		EnrolledCount: len(c.EnrolledStudentIDs),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if out.Materials == nil {
		out.Materials = []entity.Material{}
	}
	if viewer != nil {
		if viewer.UserID == c.InstructorID {
			out.EnrolledStudentIDs = c.EnrolledStudentIDs
		} else {
			enrolled := c.IsEnrolled(viewer.UserID)
			out.IsEnrolled = &enrolled
		}
	}
	return out
}

// List GET /api/courses
func (h *CourseHandler) List(c *gin.Context) {
	views, err := h.Courses.List(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	out := make([]courseResponse, 0, len(views))
	for _, v := range views {
		r := toCourseResponse(v.Course, nil)
		if v.Instructor != nil {
			r.Instructor = &instructorResponse{ID: v.Instructor.ID, Name: v.Instructor.Name, Email: v.Instructor.Email}
		}
		out = append(out, r)
	}
	response.Success(c, http.StatusOK, out, "courses", map[string]any{"count": len(out)})
}

// Create POST /api/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	p := middleware.PrincipalFrom(c)
	course, err := h.Courses.Create(c.Request.Context(), p, application.CourseInput{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		Tags:          req.Tags,
		DurationLabel: req.DurationLabel,
		LessonCount:   req.LessonCount,
		ThumbnailRef:  req.ThumbnailRef,
		Materials:     toMaterials(req.Materials),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toCourseResponse(course, p), "course created", nil)
}

// Update PUT /api/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	var req updateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	patch := entity.CoursePatch{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		Tags:          req.Tags,
		DurationLabel: req.DurationLabel,
		LessonCount:   req.LessonCount,
		ThumbnailRef:  req.ThumbnailRef,
	}
	if req.Materials != nil {
		m := toMaterials(*req.Materials)
		if m == nil {
			m = []entity.Material{}
		}
		patch.Materials = &m
	}
	p := middleware.PrincipalFrom(c)
	course, err := h.Courses.Update(c.Request.Context(), p, c.Param("id"), patch)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toCourseResponse(course, p), "course updated", nil)
}

// Delete DELETE /api/courses/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Courses.Delete(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"id": id, "deleted": true}, "course deleted", nil)
}

// Enroll POST /api/courses/:id/enroll
func (h *CourseHandler) Enroll(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	course, err := h.Courses.Enroll(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toCourseResponse(course, p), "enrolled", nil)
}
