package handler

// APIV1Prefix is the base path for the public API.
const APIV1Prefix = "/api/v1"
