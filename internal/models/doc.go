// Package models defines domain entities and persistence interfaces for the wallview gallery.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): JSON shapes served by the API and consumed by front ends
//   - [Category] : A named folder of wallpapers
//   - [Image] : One wallpaper as listed in a gallery page
//   - [Page] : A page of images with paging totals
//   - [ImageDetail] : Metadata shown by the viewer's details action
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [PersistedCategory] : Categories with their folder path
//   - [PersistedImage] : Indexed image files with dimensions and sort position
//
// All persistent entities implement the Model interface providing ID generation, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
