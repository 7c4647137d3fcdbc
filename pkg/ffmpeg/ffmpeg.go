package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

// FFmpeg wraps ffmpeg and ffprobe functionality for video processing
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
}

// New creates a new FFmpeg instance
func New(ffmpegPath, ffprobePath string, timeout time.Duration) *FFmpeg {
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		timeout:     timeout,
	}
}

// ValidateBinaries checks if ffmpeg and ffprobe are available
func (f *FFmpeg) ValidateBinaries() error {
	if _, err := exec.LookPath(f.ffmpegPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFmpegNotFound, f.ffmpegPath)
	}

	if _, err := exec.LookPath(f.ffprobePath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFprobeNotFound, f.ffprobePath)
	}

	return nil
}

// ExtractThumbnail extracts a single frame at the given timestamp and writes
// it to outputPath. The output format follows the file extension.
func (f *FFmpeg) ExtractThumbnail(ctx context.Context, inputPath, outputPath string, timestamp float64) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return NewProcessingError("thumbnail_extraction", inputPath, err, "")
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	args := []string{
		"-ss", fmt.Sprintf("%.3f", timestamp), // Seek before input (faster)
		"-i", inputPath,
		"-vframes", "1",
		"-q:v", "2",
		"-y",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return NewProcessingError("thumbnail_extraction", inputPath, err, stderr.String())
	}

	// ffmpeg exits zero on some seek-past-end cases without writing a frame
	if info, err := os.Stat(outputPath); err != nil || info.Size() == 0 {
		return NewProcessingError("thumbnail_extraction", inputPath,
			fmt.Errorf("no frame written at %.3fs", timestamp), stderr.String())
	}

	return nil
}

// ExtractClip extracts a re-encoded clip between start and end seconds
func (f *FFmpeg) ExtractClip(ctx context.Context, inputPath, outputPath string, start, end float64) error {
	duration := end - start
	if duration <= 0 {
		return NewProcessingError("clip_extraction", inputPath,
			fmt.Errorf("invalid time range: start=%.3f, end=%.3f", start, end), "")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return NewProcessingError("clip_extraction", inputPath, err, "")
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	args := []string{
		"-ss", fmt.Sprintf("%.3f", start),
		"-i", inputPath,
		"-t", fmt.Sprintf("%.3f", duration),
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		"-y",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return NewProcessingError("clip_extraction", inputPath, err, stderr.String())
	}

	return nil
}

// ConcatClips joins already-encoded clips into outputPath without
// re-encoding. The clips must share codec parameters, which holds for
// clips produced by ExtractClip.
func (f *FFmpeg) ConcatClips(ctx context.Context, clipPaths []string, outputPath string) error {
	if len(clipPaths) == 0 {
		return NewProcessingError("clip_concat", outputPath,
			fmt.Errorf("no clips to concatenate"), "")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return NewProcessingError("clip_concat", outputPath, err, "")
	}

	// the concat demuxer reads its inputs from a list file
	listFile, err := os.CreateTemp(filepath.Dir(outputPath), "concat_*.txt")
	if err != nil {
		return NewProcessingError("clip_concat", outputPath, err, "")
	}
	defer os.Remove(listFile.Name())

	for _, clip := range clipPaths {
		if _, err := fmt.Fprintf(listFile, "file '%s'\n", clip); err != nil {
			listFile.Close()
			return NewProcessingError("clip_concat", outputPath, err, "")
		}
	}
	if err := listFile.Close(); err != nil {
		return NewProcessingError("clip_concat", outputPath, err, "")
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listFile.Name(),
		"-c", "copy",
		"-y",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return NewProcessingError("clip_concat", outputPath, err, stderr.String())
	}

	return nil
}

// showinfo log lines look like:
//   [Parsed_showinfo_1 @ 0x...] n:3 pts:123456 pts_time:4.13867 ...
var ptsTimeRe = regexp.MustCompile(`pts_time:([0-9]+\.?[0-9]*)`)

// DetectSceneChanges runs ffmpeg's content-change detector over the video
// stream and returns the timestamps where the inter-frame difference exceeds
// the threshold (0.0 - 1.0, lower is more sensitive). An empty result means
// no cuts were found and is not an error.
func (f *FFmpeg) DetectSceneChanges(ctx context.Context, inputPath string, threshold float64) ([]SceneChange, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	args := []string{
		"-i", inputPath,
		"-vf", fmt.Sprintf("select='gt(scene,%.3f)',showinfo", threshold),
		"-f", "null",
		"-",
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, NewProcessingError("scene_detection", inputPath, err, stderr.String())
	}

	var changes []SceneChange
	scanner := bufio.NewScanner(&stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !bytes.Contains([]byte(line), []byte("showinfo")) {
			continue
		}
		m := ptsTimeRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		ts, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		changes = append(changes, SceneChange{Time: ts, Score: threshold})
	}
	if err := scanner.Err(); err != nil {
		return nil, NewProcessingError("scene_detection", inputPath, err, "")
	}

	return changes, nil
}
