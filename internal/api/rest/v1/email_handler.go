package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MGTheTrain/admin-console/internal/domain/mail"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
)

// EmailHandler defines the interface for email templates and mail settings
type EmailHandler interface {
	ListTemplates(ctx *gin.Context)
	CreateTemplate(ctx *gin.Context)
	GetTemplate(ctx *gin.Context)
	UpdateTemplate(ctx *gin.Context)
	DeleteTemplate(ctx *gin.Context)
	Preview(ctx *gin.Context)
	SendTest(ctx *gin.Context)
	Tags(ctx *gin.Context)
	ListSettings(ctx *gin.Context)
	SaveSettings(ctx *gin.Context)
}

type emailHandler struct {
	templateService mail.EmailTemplateService
	settingsService mail.SettingsService
}

// NewEmailHandler creates a new EmailHandler
func NewEmailHandler(templateService mail.EmailTemplateService, settingsService mail.SettingsService) EmailHandler {
	return &emailHandler{
		templateService: templateService,
		settingsService: settingsService,
	}
}

// ListTemplates handles the GET request listing shared templates and those of the
// current team
// @Summary List email templates
// @Tags Email
// @Produce json
// @Success 200 {array} mail.EmailTemplate
// @Router /email-templates [get]
func (handler *emailHandler) ListTemplates(ctx *gin.Context) {
	var teamID *string
	if id := ctx.GetString(teamKey); id != "" {
		teamID = &id
	}

	templates, err := handler.templateService.List(ctx.Request.Context(), teamID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	if templates == nil {
		templates = []*mail.EmailTemplate{}
	}
	ctx.JSON(http.StatusOK, templates)
}

// CreateTemplate handles the POST request creating a template
// @Summary Create an email template
// @Tags Email
// @Accept json
// @Produce json
// @Param requestBody body mail.TemplateInput true "Template"
// @Success 201 {object} mail.EmailTemplate
// @Failure 422 {object} ErrorResponse
// @Router /email-templates [post]
func (handler *emailHandler) CreateTemplate(ctx *gin.Context) {
	var request mail.TemplateInput
	if err := ctx.ShouldBindJSON(&request); err != nil {
		abortWithError(ctx, errs.Invalid("invalid template data: %v", err))
		return
	}

	tpl, err := handler.templateService.Create(ctx.Request.Context(), &request)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, tpl)
}

// GetTemplate handles the GET request for one template
// @Summary Get an email template
// @Tags Email
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} mail.EmailTemplate
// @Failure 404 {object} ErrorResponse
// @Router /email-templates/{id} [get]
func (handler *emailHandler) GetTemplate(ctx *gin.Context) {
	tpl, err := handler.templateService.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, tpl)
}

// UpdateTemplate handles the PUT request replacing a template
// @Summary Update an email template
// @Tags Email
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param requestBody body mail.TemplateInput true "Template"
// @Success 200 {object} mail.EmailTemplate
// @Router /email-templates/{id} [put]
func (handler *emailHandler) UpdateTemplate(ctx *gin.Context) {
	var request mail.TemplateInput
	if err := ctx.ShouldBindJSON(&request); err != nil {
		abortWithError(ctx, errs.Invalid("invalid template data: %v", err))
		return
	}

	tpl, err := handler.templateService.Update(ctx.Request.Context(), ctx.Param("id"), &request)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, tpl)
}

// DeleteTemplate handles the DELETE request for a template
// @Summary Delete an email template
// @Tags Email
// @Param id path string true "Template ID"
// @Success 204
// @Router /email-templates/{id} [delete]
func (handler *emailHandler) DeleteTemplate(ctx *gin.Context) {
	if err := handler.templateService.DeleteByID(ctx.Request.Context(), ctx.Param("id")); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Preview renders a template against stored models
// @Summary Preview an email template
// @Tags Email
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param requestBody body PreviewRequest true "Models by entity type"
// @Success 200 {object} mail.Rendered
// @Router /email-templates/{id}/preview [post]
func (handler *emailHandler) Preview(ctx *gin.Context) {
	var request PreviewRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		abortWithError(ctx, errs.Invalid("invalid request body: %v", err))
		return
	}

	rendered, err := handler.templateService.Preview(ctx.Request.Context(), ctx.Param("id"), request.Entities)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, rendered)
}

// SendTest mails a template to one address with the credentials of the current user
// @Summary Send a test email
// @Tags Email
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param requestBody body SendTestRequest true "Recipient"
// @Success 200 {object} mail.Rendered
// @Router /email-templates/{id}/send-test [post]
func (handler *emailHandler) SendTest(ctx *gin.Context) {
	var request SendTestRequest
	if !bindJSON(ctx, &request) {
		return
	}

	tpl, err := handler.templateService.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	locale := request.Locale
	if locale == "" {
		locale = tpl.Locale
	}
	entities := make(map[string]interface{}, len(request.Entities))
	for entity, id := range request.Entities {
		entities[entity] = id
	}

	req := &mail.SendRequest{
		TemplateKey: tpl.Key,
		Locale:      locale,
		To:          []string{request.To},
		Entities:    entities,
		TeamID:      ctx.GetString(teamKey),
	}
	if user := currentUser(ctx); user != nil {
		req.UserID = user.ID
	}

	rendered, err := handler.templateService.Send(ctx.Request.Context(), req)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, rendered)
}

// Tags lists the merge tags of an entity type
// @Summary List merge tags
// @Tags Email
// @Produce json
// @Param entity path string true "Entity type"
// @Success 200 {array} string
// @Failure 404 {object} ErrorResponse
// @Router /email-templates/tags/{entity} [get]
func (handler *emailHandler) Tags(ctx *gin.Context) {
	tags, err := handler.templateService.AvailableTags(ctx.Param("entity"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, tags)
}

// ListSettings lists stored mail settings with passwords redacted
// @Summary List mail settings
// @Tags Email
// @Produce json
// @Success 200 {array} mail.Settings
// @Router /mail-settings [get]
func (handler *emailHandler) ListSettings(ctx *gin.Context) {
	settings, err := handler.settingsService.List(ctx.Request.Context())
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	if settings == nil {
		settings = []*mail.Settings{}
	}
	ctx.JSON(http.StatusOK, settings)
}

// SaveSettings stores the mail settings of a scope
// @Summary Save mail settings
// @Tags Email
// @Accept json
// @Produce json
// @Param requestBody body MailSettingsRequest true "Settings"
// @Success 200 {object} mail.Settings
// @Failure 422 {object} ErrorResponse
// @Router /mail-settings [put]
func (handler *emailHandler) SaveSettings(ctx *gin.Context) {
	var request MailSettingsRequest
	if !bindJSON(ctx, &request) {
		return
	}

	saved, err := handler.settingsService.Save(ctx.Request.Context(), request.ToSettings())
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, saved)
}
