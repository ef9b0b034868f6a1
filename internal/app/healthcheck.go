package app

import (
	"net/http"

	"github.com/netcinema/booking/api"
)

func (app *application) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthcheckResponse{
		Status: "available",
		SystemInfo: api.SystemInfo{
			Version:     version,
			Environment: app.config.env,
		},
	}

	err := app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
