package tool

import "github.com/gin-gonic/gin"

// Response envelopes shared by every API handler: errors carry an "error"
// key, successful answers wrap their payload under "data".

func FastReturnError(msg string) gin.H {
	return gin.H{
		"error": msg,
	}
}

func FastReturnSuccessWithData(data any) gin.H {
	return gin.H{
		"data": data,
	}
}
