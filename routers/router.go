package routers

import (
	"github.com/gin-gonic/gin"

	"hookline.io/xano-connector/gateway"
)

func InitRouter(gw *gateway.HandleT) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/health", gw.ProcessHealth)

	r.POST("/execute", gw.ProcessExecute)

	r.POST("/credential", gw.ProcessSaveCredential)
	r.POST("/credential/test", gw.ProcessCredentialTest)

	r.GET("/options/workspaces", gw.GetWorkspaceOptions)
	r.GET("/options/tables", gw.GetTableOptions)
	r.GET("/options/fields", gw.GetFieldOptions)

	return r
}
