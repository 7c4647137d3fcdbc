package scenes

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mediatag/tagger-api/api/types"
)

// Export extracts the selected scenes as standalone clips
// @Summary      Export scenes
// @Description  Extract the selected scenes as standalone clips, reusing clips that already exist. With merge set, the clips are additionally joined into a single file. Unknown scene IDs are skipped.
// @Tags         scenes
// @Accept       json
// @Produce      json
// @Param        request body types.ExportScenesRequest true "Scene selection"
// @Success      200 {object} types.ExportScenesResponse "Exported clips"
// @Failure      400 {object} types.ErrorResponse "Invalid request"
// @Failure      500 {object} types.ErrorResponse "Internal server error"
// @Router       /api/v1/scenes/export [post]
func Export(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ExportScenesRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}
		if deps.Media == nil {
			types.SendInternalError(c, "Scene export is not configured")
			return
		}

		files := make([]types.ExportedScene, 0, len(req.SceneIDs))
		clips := make([]string, 0, len(req.SceneIDs))

		for _, sceneID := range req.SceneIDs {
			scene, err := deps.VideoService.GetScene(c.Request.Context(), sceneID)
			if err != nil {
				log.Printf("[WARN] Skipping scene %d in export: %v", sceneID, err)
				continue
			}
			video, err := deps.VideoService.Get(c.Request.Context(), scene.VideoID)
			if err != nil {
				log.Printf("[WARN] Skipping scene %d in export, video %d unavailable: %v", sceneID, scene.VideoID, err)
				continue
			}

			clipPath := scene.ClipPath
			if !fileExists(clipPath) {
				clipPath = filepath.Join(deps.ClipDir, fmt.Sprintf("video_%d", video.ID), fmt.Sprintf("scene_%s.mp4", scene.UUID))
				if err := deps.Media.ExtractClip(c.Request.Context(), video.FilePath, clipPath, scene.StartTime, scene.EndTime); err != nil {
					log.Printf("[WARN] Skipping scene %d in export, clip extraction failed: %v", sceneID, err)
					continue
				}
				if err := deps.VideoService.SetSceneClipPath(c.Request.Context(), scene.ID, clipPath); err != nil {
					log.Printf("[WARN] Failed to record clip path for scene %d: %v", scene.ID, err)
				}
			}

			clips = append(clips, clipPath)
			files = append(files, types.ExportedScene{
				SceneID:       scene.ID,
				VideoFilename: video.Filename,
				StartTime:     scene.StartTime,
				EndTime:       scene.EndTime,
				ClipPath:      clipPath,
			})
		}

		response := types.ExportScenesResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Scenes exported"},
			Files:        files,
		}

		if req.Merge && len(clips) > 1 {
			mergedPath := filepath.Join(deps.ExportDir, fmt.Sprintf("merged_%s.mp4", uuid.New().String()))
			if err := deps.Media.ConcatClips(c.Request.Context(), clips, mergedPath); err != nil {
				log.Printf("[ERROR] Failed to merge %d clips: %v", len(clips), err)
			} else {
				response.MergedFile = mergedPath
			}
		}

		c.JSON(http.StatusOK, response)
	}
}

// DownloadExport serves a previously merged export file
// @Summary      Download merged export
// @Description  Download a merged export file by name
// @Tags         scenes
// @Produce      video/mp4
// @Param        filename path string true "Export file name"
// @Success      200 {file} file "Merged export"
// @Failure      404 {object} types.ErrorResponse "Export file not found"
// @Router       /api/v1/scenes/export/{filename}/download [get]
func DownloadExport(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Base strips any path components a client might smuggle in
		filename := filepath.Base(c.Param("filename"))
		path := filepath.Join(deps.ExportDir, filename)

		if !fileExists(path) {
			types.SendNotFound(c, "Export file not found")
			return
		}

		c.FileAttachment(path, filename)
	}
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
