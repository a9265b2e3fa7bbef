package controllers

import (
	"backend/errs"

	"github.com/gin-gonic/gin"
)

// fail writes the source system's error envelope with the status mapped
// from the error taxonomy.
func fail(c *gin.Context, err error) {
	c.JSON(errs.HTTPStatus(err), gin.H{"ok": false, "err": err.Error()})
}
