package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/matheus3301/chinopark/internal/offline"
	"github.com/matheus3301/chinopark/internal/parking"
)

const reportActivityLimit = 20

type pageData struct {
	Title         string
	Flash         *Flash
	Spaces        []parking.SpaceView
	VehicleTypes  []string
	DriverIDTypes []string
	Report        parking.ReportView
}

// checkInForm binds both the HTML form and the JSON API body.
type checkInForm struct {
	Plate           string `form:"plate_number" json:"plate_number"`
	Type            string `form:"vehicle_type" json:"vehicle_type"`
	Color           string `form:"vehicle_color" json:"vehicle_color"`
	DriverName      string `form:"driver_name" json:"driver_name"`
	DriverIDType    string `form:"driver_id_type" json:"driver_id_type"`
	DriverIDNumber  string `form:"driver_id_number" json:"driver_id_number"`
	DriverPhone     string `form:"driver_phone" json:"driver_phone"`
	DriverResidence string `form:"driver_residence" json:"driver_residence"`
}

func (f checkInForm) request() parking.CheckInRequest {
	return parking.CheckInRequest{
		Plate:           f.Plate,
		Type:            f.Type,
		Color:           f.Color,
		DriverName:      f.DriverName,
		DriverIDType:    f.DriverIDType,
		DriverIDNumber:  f.DriverIDNumber,
		DriverPhone:     f.DriverPhone,
		DriverResidence: f.DriverResidence,
	}
}

func (s *Server) handleIndex(c echo.Context) error {
	spaces, err := s.svc.Spaces()
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "index", pageData{
		Title:         "Dashboard",
		Flash:         popFlash(c),
		Spaces:        parking.NewSpaceViews(spaces),
		VehicleTypes:  parking.VehicleTypes,
		DriverIDTypes: parking.DriverIDTypes,
	})
}

func (s *Server) handleCheckIn(c echo.Context) error {
	var form checkInForm
	if err := c.Bind(&form); err != nil {
		setFlash(c, "error", "Invalid check-in form.")
		return c.Redirect(http.StatusSeeOther, "/")
	}
	if _, err := s.svc.CheckIn(form.request()); err != nil {
		s.flashError(c, "check-in", err)
	} else {
		setFlash(c, "success", parking.CheckedInMessage)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleCheckOut(c echo.Context) error {
	if _, err := s.svc.CheckOut(c.FormValue("plate_number")); err != nil {
		s.flashError(c, "check-out", err)
	} else {
		setFlash(c, "success", parking.CheckedOutMessage)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) flashError(c echo.Context, action string, err error) {
	if !parking.IsUserError(err) {
		s.logger.Error(action+" failed", zap.Error(err))
	}
	setFlash(c, "error", parking.Message(err))
}

func (s *Server) handleReport(c echo.Context) error {
	report, err := s.svc.Report(reportActivityLimit)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "report", pageData{
		Title:  "Report",
		Flash:  popFlash(c),
		Report: parking.NewReportView(report),
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// manifestDoc describes the offline cache a client should install.
type manifestDoc struct {
	Version   string   `json:"version"`
	Profile   string   `json:"profile"`
	Resources []string `json:"resources"`
}

func (s *Server) handleManifest(c echo.Context) error {
	profile, _ := offline.ParseProfile(s.opts.Offline.Profile)
	resources := s.opts.Offline.Manifest
	if len(resources) == 0 {
		resources = offline.DefaultManifest(profile)
	}
	return c.JSON(http.StatusOK, manifestDoc{
		Version:   s.opts.Offline.Version,
		Profile:   string(profile),
		Resources: resources,
	})
}

func (s *Server) setRevision(c echo.Context, rev int64) {
	c.Response().Header().Set(RevisionHeader, strconv.FormatInt(rev, 10))
}

func (s *Server) handleSpaces(c echo.Context) error {
	rev, err := s.svc.Revision()
	if err != nil {
		return err
	}
	spaces, err := s.svc.Spaces()
	if err != nil {
		return err
	}
	s.setRevision(c, rev)
	return c.JSON(http.StatusOK, parking.NewSpaceViews(spaces))
}

func (s *Server) handleReportJSON(c echo.Context) error {
	report, err := s.svc.Report(reportActivityLimit)
	if err != nil {
		return err
	}
	s.setRevision(c, report.Revision)
	return c.JSON(http.StatusOK, parking.NewReportView(report))
}

func (s *Server) handleRevision(c echo.Context) error {
	rev, err := s.svc.Revision()
	if err != nil {
		return err
	}
	s.setRevision(c, rev)
	if c.Request().Method == http.MethodHead {
		return c.NoContent(http.StatusOK)
	}
	return c.JSON(http.StatusOK, map[string]int64{"revision": rev})
}

func (s *Server) handleCreateVehicle(c echo.Context) error {
	var form checkInForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	v, err := s.svc.CheckIn(form.request())
	if err != nil {
		return s.apiError(c, err)
	}
	return c.JSON(http.StatusCreated, parking.NewVehicleView(v))
}

func (s *Server) handleCheckoutVehicle(c echo.Context) error {
	v, err := s.svc.CheckOut(c.Param("plate"))
	if err != nil {
		return s.apiError(c, err)
	}
	return c.JSON(http.StatusOK, parking.NewVehicleView(v))
}

func (s *Server) apiError(c echo.Context, err error) error {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("api request failed", zap.Error(err))
	}
	return c.JSON(status, map[string]string{"error": parking.Message(err)})
}

// StatusFor maps a parking error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, parking.ErrInvalidPlate), errors.Is(err, parking.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, parking.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, parking.ErrNoSpace), errors.Is(err, parking.ErrAlreadyParked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
