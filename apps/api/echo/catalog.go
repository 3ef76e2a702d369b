package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/learnhub/core/catalog"
	"github.com/trezcool/learnhub/core/progress"
	"github.com/trezcool/learnhub/core/user"
)

type catalogApi struct {
	svc      *catalog.Service
	progSvc  *progress.Service
	usrSvc   user.ServiceInterface
	validate *validator.Validate
}

func registerCatalogAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *catalog.Service,
	progSvc *progress.Service,
	usrSvc user.ServiceInterface,
	validate *validator.Validate,
) {
	api := catalogApi{
		svc:      svc,
		progSvc:  progSvc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	sg := g.Group("/subjects", jwt)
	sg.GET("", api.subjectQuery)
	sg.POST("", api.subjectCreate, adminMiddleware())
	sg.GET("/:id", api.subjectRetrieve)
	sg.DELETE("/:id", api.subjectDestroy, adminMiddleware())
	sg.GET("/:id/lessons", api.lessonQuery)
	sg.POST("/:id/lessons", api.lessonCreate, adminMiddleware())

	lg := g.Group("/lessons", jwt)
	lg.GET("/:id", api.lessonRetrieve)
	lg.POST("/:id/complete", api.lessonComplete)
}

// Handlers

// subjectQuery lists the subjects visible to the caller, each annotated
// with the caller's completion progress. Students only see their grade's
// subjects; admins see all.
func (api *catalogApi) subjectQuery(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := new(catalog.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		filter = new(catalog.QueryFilter)
	}

	reqCtx := ctx.Request().Context()
	subjects, err := api.svc.QuerySubjects(reqCtx, actor, filter)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}

	return ctx.JSON(http.StatusOK, api.progSvc.Aggregate(reqCtx, actor.ID, subjects))
}

func (api *catalogApi) subjectCreate(ctx echo.Context) error {
	var data catalog.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sub, err := api.svc.CreateSubject(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *catalogApi) subjectRetrieve(ctx echo.Context) error {
	sub, err := api.svc.GetSubject(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *catalogApi) subjectDestroy(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.DeleteSubject(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// lessonQuery lists a subject's lessons in creation order.
func (api *catalogApi) lessonQuery(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	sub, err := api.svc.GetSubject(reqCtx, ctx.Param("id"))
	if err != nil {
		return err
	}
	lessons, err := api.svc.QueryLessons(reqCtx, sub.ID)
	if err != nil {
		return errors.Wrap(err, "querying lessons")
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *catalogApi) lessonCreate(ctx echo.Context) error {
	var data catalog.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	les, err := api.svc.CreateLesson(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, les)
}

// lessonRetrieve returns the lesson joined with its owning subject's title.
func (api *catalogApi) lessonRetrieve(ctx echo.Context) error {
	les, err := api.svc.GetLesson(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, les)
}

// lessonComplete records the caller's completion of the lesson.
// Marking an already-completed lesson succeeds without a new record.
func (api *catalogApi) lessonComplete(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reqCtx := ctx.Request().Context()
	les, err := api.svc.GetLesson(reqCtx, ctx.Param("id"))
	if err != nil {
		return err
	}

	if err := api.progSvc.MarkComplete(reqCtx, actor.ID, les.ID); err != nil {
		return errors.Wrap(err, "marking lesson complete")
	}
	return ctx.NoContent(http.StatusNoContent)
}
