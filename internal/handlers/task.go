package handlers

import (
	"net/http"

	dom "taskmanager/internal/domain"
	"taskmanager/internal/dto"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// List godoc
// @Summary      List tasks
// @Description  Filter by one or more statuses and sort by field:direction. Unknown values are ignored.
// @Tags         tasks
// @Produce      json
// @Param        status  query     []string  false  "pending, in-progress or completed"  collectionFormat(multi)
// @Param        sort    query     string    false  "field:asc|desc, e.g. updatedAt:asc (default createdAt:desc)"
// @Success      200     {object}  dto.ListTasksResponse
// @Failure      500     {object}  dto.ErrorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	q := dom.NewListQuery(c.QueryArray("status"), c.Query("sort"))
	list, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{
		Status:  dto.StatusSuccess,
		Results: len(list),
		Data:    dto.TasksData{Tasks: dto.TasksToResponses(list)},
	})
}

// Get godoc
// @Summary      Get a task by ID
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  dto.TaskEnvelope
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, taskEnvelope(t))
}

// Create godoc
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTaskRequest  true  "Task fields"
// @Success      201   {object}  dto.TaskEnvelope
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := bindBody(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	t, err := h.svc.Create(c.Request.Context(), req.Fields())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, taskEnvelope(t))
}

// Update godoc
// @Summary      Update a task
// @Description  Only the supplied fields change; updatedAt is refreshed.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Task ID"
// @Param        body  body      dto.UpdateTaskRequest  true  "Partial update"
// @Success      200   {object}  dto.TaskEnvelope
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := bindBody(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	t, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.Fields())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, taskEnvelope(t))
}

// Delete godoc
// @Summary      Delete a task
// @Tags         tasks
// @Param        id   path  string  true  "Task ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func taskEnvelope(t dom.Task) dto.TaskEnvelope {
	return dto.TaskEnvelope{
		Status: dto.StatusSuccess,
		Data:   dto.TaskData{Task: dto.TaskToResponse(t)},
	}
}
